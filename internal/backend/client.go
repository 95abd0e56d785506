// Package backend holds the typed HTTP clients for the remote shop
// API. Responses arrive in a {message, data} envelope; failures are
// surfaced as *ResponseError so callers can map field-level errors
// back onto forms.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// SetToken installs the access token sent on subsequent requests. An
// empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ResponseError is a non-2xx backend reply. Fields carries per-field
// messages for unprocessable-entity responses and is nil otherwise.
type ResponseError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do runs one request against the backend. The envelope's data is
// decoded into out when out is non-nil; the envelope message is
// returned for callers that surface it (e.g. checkout).
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) (string, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, params, reader)
	if err != nil {
		return "", err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) (string, error) {
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("backend call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return "", fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		respErr := &ResponseError{Status: resp.StatusCode, Message: env.Message}
		if respErr.Message == "" {
			respErr.Message = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnprocessableEntity && len(env.Data) > 0 {
			fields := make(map[string]string)
			if err := json.Unmarshal(env.Data, &fields); err == nil {
				respErr.Fields = fields
			}
		}
		return "", respErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("decode response data: %w", err)
		}
	}
	return env.Message, nil
}
