package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopfront/internal/backend"
	"shopfront/internal/cache"
	"shopfront/internal/cart"
	"shopfront/internal/catalog"
	"shopfront/internal/models"
	"shopfront/internal/session"
	"shopfront/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeShop is an httptest stand-in for the remote shop backend.
type fakeShop struct {
	mu        sync.Mutex
	purchases []models.Purchase
	buys      [][]models.PurchaseLine
	updates   []models.PurchaseLine
	loginCode int // 0 means success
}

func (f *fakeShop) envelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"message": message, "data": data})
}

func (f *fakeShop) server() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		code := f.loginCode
		f.mu.Unlock()
		if code != 0 {
			f.envelope(w, code, "invalid credentials", map[string]string{"password": "password is incorrect"})
			return
		}
		f.envelope(w, http.StatusOK, "login success", models.AuthResponse{
			AccessToken: "Bearer tok",
			User:        models.User{ID: "u1", Email: "a@b.c"},
		})
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		f.envelope(w, http.StatusOK, "logout success", nil)
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		f.envelope(w, http.StatusOK, "ok", models.ProductList{
			Products:   []models.Product{{ID: "p1", Name: "Basic Tee"}},
			Pagination: models.Pagination{Page: 1, Limit: 20, PageSize: 3},
		})
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/products/")
		f.envelope(w, http.StatusOK, "ok", models.Product{ID: id, Name: "Basic Tee"})
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		f.envelope(w, http.StatusOK, "ok", []models.Category{{ID: "c1", Name: "Shirts"}})
	})
	mux.HandleFunc("/purchases", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			f.envelope(w, http.StatusOK, "ok", f.purchases)
		case http.MethodDelete:
			var ids []string
			json.NewDecoder(r.Body).Decode(&ids)
			remove := map[string]bool{}
			for _, id := range ids {
				remove[id] = true
			}
			kept := f.purchases[:0]
			for _, p := range f.purchases {
				if !remove[p.ID] {
					kept = append(kept, p)
				}
			}
			f.purchases = kept
			f.envelope(w, http.StatusOK, "deleted", map[string]int{"deleted_count": len(ids)})
		}
	})
	mux.HandleFunc("/purchases/update-purchase", func(w http.ResponseWriter, r *http.Request) {
		var line models.PurchaseLine
		json.NewDecoder(r.Body).Decode(&line)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.updates = append(f.updates, line)
		for i := range f.purchases {
			if f.purchases[i].Product.ID == line.ProductID {
				f.purchases[i].BuyCount = line.BuyCount
				f.envelope(w, http.StatusOK, "updated", f.purchases[i])
				return
			}
		}
		f.envelope(w, http.StatusNotFound, "purchase not found", nil)
	})
	mux.HandleFunc("/purchases/buy-products", func(w http.ResponseWriter, r *http.Request) {
		var lines []models.PurchaseLine
		json.NewDecoder(r.Body).Decode(&lines)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.buys = append(f.buys, lines)
		bought := map[string]bool{}
		for _, line := range lines {
			bought[line.ProductID] = true
		}
		kept := f.purchases[:0]
		for _, p := range f.purchases {
			if !bought[p.Product.ID] {
				kept = append(kept, p)
			}
		}
		f.purchases = kept
		f.envelope(w, http.StatusOK, "order placed", nil)
	})
	mux.HandleFunc("/purchases/add-to-cart", func(w http.ResponseWriter, r *http.Request) {
		var line models.PurchaseLine
		json.NewDecoder(r.Body).Decode(&line)
		f.mu.Lock()
		defer f.mu.Unlock()
		purchase := models.Purchase{
			ID:       "pu-new",
			BuyCount: line.BuyCount,
			Product:  models.Product{ID: line.ProductID, Quantity: 50},
		}
		f.purchases = append(f.purchases, purchase)
		f.envelope(w, http.StatusOK, "added", purchase)
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		f.envelope(w, http.StatusOK, "ok", models.User{ID: "u1", Email: "a@b.c", Name: "Alex"})
	})

	return httptest.NewServer(mux)
}

type testApp struct {
	router  *gin.Engine
	shop    *fakeShop
	session *session.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	shop := &fakeShop{}
	srv := shop.server()
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := backend.New(srv.URL, logger)
	store := storage.NewMemoryStore()
	sessionStore := session.New(client, store, logger)
	t.Cleanup(sessionStore.Close)

	catalogStore := catalog.New(client, cache.NewMemory(), logger, time.Minute)
	cartStore := cart.New(client, logger)

	router := Router(
		NewCatalogHandler(catalogStore),
		NewCartHandler(cartStore),
		NewAuthHandler(sessionStore, cartStore),
		NewUserHandler(client, sessionStore, cartStore),
		sessionStore,
		logger,
	)
	return &testApp{router: router, shop: shop, session: sessionStore}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/login", models.Credentials{Email: "a@b.c", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/cart", "/user/profile", "/user/purchases"} {
		rec := app.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := app.do(t, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRejectedRoutesRequireSignedOut(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	rec := app.do(t, http.MethodPost, "/login", models.Credentials{Email: "a@b.c", Password: "secret1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = app.do(t, http.MethodPost, "/register", models.Credentials{Email: "a@b.c", Password: "secret1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginFieldErrorsPassThrough(t *testing.T) {
	app := newTestApp(t)
	app.shop.loginCode = http.StatusUnprocessableEntity

	rec := app.do(t, http.MethodPost, "/login", models.Credentials{Email: "a@b.c", Password: "wrong-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	data := decodeData(t, rec)
	assert.Equal(t, "password is incorrect", data["password"])
}

func TestListProductsEchoesWhitelistedQuery(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/products?page=2&sort_by=price&order=asc&utm_source=mail", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	echoed, ok := data["query"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, echoed, "sort_by")
	assert.NotContains(t, echoed, "utm_source")
}

func TestProductDetailByNameID(t *testing.T) {
	app := newTestApp(t)

	nameID := models.NameID("Basic Tee", "60afb1c56ef5b902180aacb8")
	rec := app.do(t, http.MethodGet, "/products/"+nameID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeData(t, rec)
	product, ok := data["product"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "60afb1c56ef5b902180aacb8", product["_id"])
}

func TestCartFlowToggleAndCheckout(t *testing.T) {
	app := newTestApp(t)
	app.shop.purchases = []models.Purchase{
		{ID: "A", BuyCount: 2, Product: models.Product{ID: "pa", Price: 100, PriceBeforeDiscount: 150, Quantity: 10}},
		{ID: "B", BuyCount: 1, Product: models.Product{ID: "pb", Price: 200, PriceBeforeDiscount: 250, Quantity: 10}},
	}
	app.login(t)

	rec := app.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/cart/toggle", map[string]any{"index": 0, "checked": true})
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeData(t, rec)["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["checked_count"])
	assert.Equal(t, float64(200), summary["total_checked_price"])
	assert.Equal(t, float64(100), summary["total_checked_savings"])

	rec = app.do(t, http.MethodPost, "/cart/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	app.shop.mu.Lock()
	defer app.shop.mu.Unlock()
	require.Len(t, app.shop.buys, 1)
	assert.Equal(t, []models.PurchaseLine{{ProductID: "pa", BuyCount: 2}}, app.shop.buys[0])
}

func TestCheckoutWithoutSelectionHitsNoBackend(t *testing.T) {
	app := newTestApp(t)
	app.shop.purchases = []models.Purchase{
		{ID: "A", BuyCount: 1, Product: models.Product{ID: "pa", Price: 100, Quantity: 10}},
	}
	app.login(t)

	rec := app.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/cart/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, float64(0), data["bought_count"])

	app.shop.mu.Lock()
	defer app.shop.mu.Unlock()
	assert.Empty(t, app.shop.buys)
}

func TestQuantityIncreaseClampsToAvailable(t *testing.T) {
	app := newTestApp(t)
	app.shop.purchases = []models.Purchase{
		{ID: "A", BuyCount: 3, Product: models.Product{ID: "pa", Price: 100, Quantity: 3}},
	}
	app.login(t)

	rec := app.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPut, "/cart/items", map[string]any{"index": 0, "action": "increase"})
	require.Equal(t, http.StatusOK, rec.Code)

	app.shop.mu.Lock()
	defer app.shop.mu.Unlock()
	require.NotEmpty(t, app.shop.updates)
	assert.Equal(t, 3, app.shop.updates[len(app.shop.updates)-1].BuyCount)
}

func TestBuyNowPreselectFlow(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	rec := app.do(t, http.MethodPost, "/cart/buy-now", models.PurchaseLine{ProductID: "px", BuyCount: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/cart?preselect=pu-new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	purchases := decodeData(t, rec)["purchases"].([]any)
	require.Len(t, purchases, 1)
	assert.Equal(t, true, purchases[0].(map[string]any)["checked"])
}

func TestLogoutResetsCartAndSession(t *testing.T) {
	app := newTestApp(t)
	app.shop.purchases = []models.Purchase{
		{ID: "A", BuyCount: 1, Product: models.Product{ID: "pa", Price: 100, Quantity: 10}},
	}
	app.login(t)

	rec := app.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, app.session.IsAuthenticated())
	rec = app.do(t, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHistoryPassesStatusThrough(t *testing.T) {
	app := newTestApp(t)
	app.shop.purchases = []models.Purchase{
		{ID: "A", Status: models.StatusDelivered, Product: models.Product{ID: "pa"}},
	}
	app.login(t)

	rec := app.do(t, http.MethodGet, "/user/purchases?status=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateQuantityRejectsUnknownAction(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	rec := app.do(t, http.MethodPut, "/cart/items", map[string]any{"index": 0, "action": "teleport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
