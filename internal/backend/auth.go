package backend

import (
	"context"
	"net/http"

	"shopfront/internal/models"
)

func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var auth models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/login", nil, creds, &auth)
	return auth, err
}

func (c *Client) Register(ctx context.Context, creds models.Credentials) (models.AuthResponse, error) {
	var auth models.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/register", nil, creds, &auth)
	return auth, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/logout", nil, nil, nil)
	return err
}
