package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/clientcore/internal/api"
	"storefront/clientcore/internal/config"
	"storefront/clientcore/internal/metrics"
	"storefront/clientcore/internal/notify"
	"storefront/clientcore/internal/repository"
	"storefront/clientcore/internal/store"
)

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// storefrontBackend answers like the remote storefront API.
func storefrontBackend(t *testing.T) *httptest.Server {
	t.Helper()
	write := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret1" {
			write(w, http.StatusUnauthorized, `{"error":"Invalid email or password"}`)
			return
		}
		write(w, http.StatusOK, `{"user":{"id":1,"email":"a@b.com","firstName":"Ann","isAdmin":true},"token":"opaque"}`)
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusConflict, `{"error":"User with this email already exists"}`)
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"message":"ok"}`)
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"items":[{"id":1,"title":"Lamp","price":"10"}],"page":1,"per_page":8,"total":1,"pages":1}`)
	})
	mux.HandleFunc("GET /products/categories", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `{"categories":["lamps"]}`)
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusNotFound, `{"error":"Product not found"}`)
	})
	mux.HandleFunc("POST /products", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusCreated, `{"product":{"id":50,"title":"Shelf","price":"20"}}`)
	})
	mux.HandleFunc("GET /orders/user", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusOK, `[{"id":3,"status":"shipped","total":"30"}]`)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		write(w, http.StatusCreated, `{"order":{"id":4,"status":"processing","total":"20"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type facade struct {
	engine *gin.Engine
	store  *store.Store
}

func newFacade(t *testing.T) *facade {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := storefrontBackend(t)
	kv := repository.NewMemoryKVStore()
	m := metrics.New()
	client := api.New(api.Config{BaseURL: backend.URL, Timeout: 2 * time.Second}, kv, api.WithObserver(m))
	notes := notify.NewRecorder(16)
	s := store.New(context.Background(), store.Deps{
		KV:       kv,
		Auth:     api.NewAuthAPI(client),
		Products: api.NewProductAPI(client),
		Orders:   api.NewOrderAPI(client),
		Notifier: notes,
		Metrics:  m,
	})
	client.OnUnauthorized(s.ForceLogout)

	cfg := &config.Config{CORS: config.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST"},
		MaxAge:         time.Hour,
	}}
	r := SetupRouter(cfg, zap.NewNop(), m.Handler(), s.CurrentUser,
		NewCartHandler(s), NewFavoritesHandler(s), NewAuthHandler(s),
		NewOrderHandler(s), NewProductHandler(s), NewNotificationHandler(notes))
	return &facade{engine: r, store: s}
}

func (f *facade) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") != "" && rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (f *facade) login(t *testing.T) {
	t.Helper()
	rec, _ := f.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFacade_Health(t *testing.T) {
	f := newFacade(t)
	rec, _ := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestFacade_CartFlow(t *testing.T) {
	f := newFacade(t)
	lamp := gin.H{"id": 1, "title": "Lamp", "price": "10"}

	f.do(t, http.MethodPost, "/api/v1/cart/items", lamp)
	rec, env := f.do(t, http.MethodPost, "/api/v1/cart/items", lamp)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart cartView
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, "20", cart.Total.String())

	rec, env = f.do(t, http.MethodPatch, "/api/v1/cart/items/1", gin.H{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.Equal(t, 5, cart.Lines[0].Quantity)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/cart/items/abc", gin.H{"quantity": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.do(t, http.MethodDelete, "/api/v1/cart/items/1", nil)
	assert.Empty(t, f.store.State().Cart.Lines)

	_, env = f.do(t, http.MethodGet, "/api/v1/notifications", nil)
	var notes []notify.Notification
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 3)
	assert.Equal(t, "Lamp added to cart", notes[0].Message)
	assert.Equal(t, "Item removed from cart", notes[2].Message)
}

func TestFacade_CartQuantityClamps(t *testing.T) {
	f := newFacade(t)
	f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"id": 1, "title": "Lamp", "price": "10"})
	f.do(t, http.MethodPatch, "/api/v1/cart/items/1", gin.H{"quantity": 4})

	tests := []struct {
		name     string
		body     gin.H
		wantCode int
		wantQty  int
	}{
		{"zero", gin.H{"quantity": 0}, http.StatusOK, 1},
		{"negative", gin.H{"quantity": -3}, http.StatusOK, 1},
		{"missing", gin.H{}, http.StatusBadRequest, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := f.do(t, http.MethodPatch, "/api/v1/cart/items/1", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			require.Len(t, f.store.State().Cart.Lines, 1)
			assert.Equal(t, tt.wantQty, f.store.State().Cart.Lines[0].Quantity)
		})
	}
}

func TestFacade_Favorites(t *testing.T) {
	f := newFacade(t)
	f.do(t, http.MethodPost, "/api/v1/favorites", gin.H{"id": 2, "title": "Desk"})
	f.do(t, http.MethodPost, "/api/v1/favorites", gin.H{"id": 2, "title": "Desk"})

	rec, env := f.do(t, http.MethodGet, "/api/v1/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":2,"title":"Desk","price":"0"}]`, string(env.Data))

	rec, _ = f.do(t, http.MethodPost, "/api/v1/favorites", gin.H{"title": "no id"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.do(t, http.MethodDelete, "/api/v1/favorites", nil)
	assert.Empty(t, f.store.State().Favorites.Items)
}

func TestFacade_RegisterErrors(t *testing.T) {
	f := newFacade(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{"email": "nope", "password": "1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "firstName")
	assert.Contains(t, env.Errors, "lastName")
	assert.Equal(t, "Invalid email address", env.Errors["email"])
	assert.Contains(t, env.Errors, "password")

	rec, env = f.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"firstName": "Ann", "lastName": "Lee", "email": "a@b.com", "password": "secret1",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, env.Errors, "email")
	assert.Equal(t, store.StatusAnonymous, f.store.State().Auth.Status)
}

func TestFacade_SessionAndOrders(t *testing.T) {
	f := newFacade(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := f.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "a@b.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	f.login(t)

	rec, env = f.do(t, http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"id":3`)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/orders", gin.H{"payment_method": "card"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart")

	f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"id": 1, "title": "Lamp", "price": "10"})
	rec, _ = f.do(t, http.MethodPost, "/api/v1/orders", gin.H{"payment_method": "card", "shipping_address": gin.H{"city": "Oslo"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, f.store.State().Cart.Lines)
	assert.Equal(t, int64(4), f.store.State().Orders.Orders[0].ID)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFacade_Products(t *testing.T) {
	f := newFacade(t)

	rec, env := f.do(t, http.MethodPut, "/api/v1/products/filters", gin.H{"category": "lamps"})
	require.Equal(t, http.StatusOK, rec.Code)
	var state store.ProductState
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Equal(t, 1, state.Page)
	assert.Equal(t, "lamps", state.Filters.Category)
	require.Len(t, state.Items, 1)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/products/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = f.do(t, http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["lamps"]`, string(env.Data))
}

func TestFacade_AdminRoutes(t *testing.T) {
	f := newFacade(t)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/admin/products", gin.H{"title": "Shelf", "price": "20"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.login(t)
	rec, _ = f.do(t, http.MethodPost, "/api/v1/admin/products", gin.H{"title": "Shelf", "price": "20", "category": "storage"})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestFacade_Metrics(t *testing.T) {
	f := newFacade(t)
	f.do(t, http.MethodPost, "/api/v1/cart/items", gin.H{"id": 1, "title": "Lamp"})

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clientcore_store_dispatch_total{action="cart/add"} 1`)
}
