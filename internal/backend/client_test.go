package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopfront/internal/models"
	"shopfront/internal/query"
)

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"message": message, "data": data})
}

func TestGetProductsSendsConfigAndHeaders(t *testing.T) {
	var gotQuery url.Values
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		respond(w, http.StatusOK, "ok", models.ProductList{
			Products:   []models.Product{{ID: "p1", Name: "Tee"}},
			Pagination: models.Pagination{Page: 2, Limit: 20, PageSize: 5},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, zap.NewNop())
	client.SetToken("Bearer abc")

	cfg := query.ListingConfig{Page: "2", Limit: "20", SortBy: models.SortByPrice, Order: models.OrderAsc}
	list, err := client.GetProducts(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "price", gotQuery.Get("sort_by"))
	assert.Equal(t, "asc", gotQuery.Get("order"))
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Tee", list.Products[0].Name)
	assert.Equal(t, 5, list.Pagination.PageSize)
}

func TestUnprocessableEntityMapsFieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnprocessableEntity, "validation failed",
			map[string]string{"email": "email already exists"})
	}))
	defer srv.Close()

	client := New(srv.URL, zap.NewNop())
	_, err := client.Register(context.Background(), models.Credentials{Email: "a@b.c", Password: "secret1"})
	require.Error(t, err)

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusUnprocessableEntity, respErr.Status)
	assert.Equal(t, "validation failed", respErr.Message)
	assert.Equal(t, "email already exists", respErr.Fields["email"])
}

func TestDeletePurchasesSendsIDsInBody(t *testing.T) {
	var gotMethod string
	var gotIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotIDs)
		respond(w, http.StatusOK, "deleted", map[string]int{"deleted_count": 2})
	}))
	defer srv.Close()

	client := New(srv.URL, zap.NewNop())
	count, err := client.DeletePurchases(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, []string{"a", "b"}, gotIDs)
	assert.Equal(t, 2, count)
}

func TestBuyProductsReturnsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, "bought 1 products", []models.Purchase{{ID: "pu1"}})
	}))
	defer srv.Close()

	client := New(srv.URL, zap.NewNop())
	purchases, message, err := client.BuyProducts(context.Background(),
		[]models.PurchaseLine{{ProductID: "p1", BuyCount: 2}})
	require.NoError(t, err)
	assert.Equal(t, "bought 1 products", message)
	require.Len(t, purchases, 1)
}

func TestUploadAvatarMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		raw, _ := io.ReadAll(file)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "png-bytes", string(raw))
		respond(w, http.StatusOK, "uploaded", "avatar-123.png")
	}))
	defer srv.Close()

	client := New(srv.URL, zap.NewNop())
	ref, err := client.UploadAvatar(context.Background(), "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "avatar-123.png", ref)
}

func TestErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, zap.NewNop())
	_, err := client.GetCategories(context.Background())

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusBadGateway, respErr.Status)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), respErr.Message)
	assert.Nil(t, respErr.Fields)
}
