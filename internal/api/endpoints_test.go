package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/repository"
)

func TestAuthAPI_LoginShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		token string
	}{
		{"wrapped user with token", `{"user":{"id":1,"email":"a@b.com","firstName":"Ann"},"token":"t1"}`, "t1"},
		{"bare profile", `{"id":1,"email":"a@b.com","firstName":"Ann"}`, ""},
		{"access_token", `{"user":{"id":1,"email":"a@b.com","firstName":"Ann"},"access_token":"t2"}`, "t2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, kv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/auth/login", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			})
			sess, err := NewAuthAPI(c).Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "secret"})
			require.NoError(t, err)
			require.NotNil(t, sess.User)
			assert.Equal(t, int64(1), sess.User.ID)
			assert.Equal(t, "Ann", sess.User.FirstName)
			assert.Equal(t, tt.token, sess.Token)

			stored, _ := kv.Get(context.Background(), repository.KeyToken)
			if tt.token == "" {
				assert.Nil(t, stored)
			} else {
				assert.Equal(t, tt.token, string(stored))
			}
		})
	}
}

func TestAuthAPI_RegisterWireShape(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, 201, map[string]any{"message": "registered"})
	})

	sess, err := NewAuthAPI(c).Register(context.Background(), model.Registration{
		FirstName: "Ann", LastName: "Lee", Email: "a@b.com", Password: "secret", Phone: "555",
	})
	require.NoError(t, err)
	assert.Nil(t, sess.User, "no profile in the response")

	assert.Equal(t, "Ann", got["first_name"])
	assert.Equal(t, "Lee", got["last_name"])
	assert.Equal(t, "a@b.com", got["email"])
	assert.Equal(t, "555", got["phone"])
	assert.NotContains(t, got, "address")
	assert.NotContains(t, got, "firstName")
}

func TestAuthAPI_RegisterConflict(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 409, map[string]string{"error": "Conflict"})
	})

	_, err := NewAuthAPI(c).Register(context.Background(), model.Registration{Email: "a@b.com"})
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConflict, apiErr.Kind)
	assert.Equal(t, CodeUserExists, apiErr.Code)
	assert.Contains(t, apiErr.Fields, "email")
}

func TestAuthAPI_LogoutDropsTokenOnFailure(t *testing.T) {
	c, kv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 500, map[string]string{"error": "boom"})
	})
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, repository.KeyToken, []byte("abc")))

	err := NewAuthAPI(c).Logout(ctx)
	assert.Error(t, err)
	stored, _ := kv.Get(ctx, repository.KeyToken)
	assert.Nil(t, stored)
}

func TestAuthAPI_MeAndUpdate(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `{"id":4,"email":"x@y.z","isAdmin":true}`)
		case http.MethodPut:
			var in model.ProfileUpdate
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_, _ = io.WriteString(w, `{"user":{"id":4,"email":"x@y.z","firstName":"`+in.FirstName+`"}}`)
		}
	})
	auth := NewAuthAPI(c)

	me, err := auth.Me(context.Background())
	require.NoError(t, err)
	assert.True(t, me.IsAdmin)

	updated, err := auth.UpdateProfile(context.Background(), model.ProfileUpdate{FirstName: "Zed"})
	require.NoError(t, err)
	assert.Equal(t, "Zed", updated.FirstName)
}

func TestAuthAPI_MeRejectsEmptyProfile(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	_, err := NewAuthAPI(c).Me(context.Background())
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidResponse, apiErr.Code)
}

func TestProductAPI_ListShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		want  model.Pagination
		count int
	}{
		{
			name:  "paginated envelope",
			body:  `{"items":[{"id":1,"title":"A","price":10.5},{"id":2,"title":"B","price":3}],"page":2,"per_page":2,"total":9,"pages":5}`,
			want:  model.Pagination{Page: 2, Limit: 2, Total: 9, Pages: 5},
			count: 2,
		},
		{
			name:  "products key",
			body:  `{"products":[{"id":1,"title":"A","price":1}],"page":1,"per_page":8,"total":1,"pages":1}`,
			want:  model.Pagination{Page: 1, Limit: 8, Total: 1, Pages: 1},
			count: 1,
		},
		{
			name:  "bare array",
			body:  `[{"id":1,"title":"A","price":1},{"id":2,"title":"B","price":2},{"id":3,"title":"C","price":3}]`,
			want:  model.Pagination{Page: 1, Limit: 8, Total: 3, Pages: 1},
			count: 3,
		},
		{
			name:  "envelope without paging fields",
			body:  `{"items":[]}`,
			want:  model.Pagination{Page: 2, Limit: 8, Total: 0, Pages: 0},
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				_, _ = io.WriteString(w, tt.body)
			})
			page, err := NewProductAPI(c).List(context.Background(), model.ProductQuery{
				ProductFilters: model.ProductFilters{Category: "lamps", Sort: model.DefaultSort},
				Page:           2,
				Limit:          8,
			})
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.count)
			assert.NotNil(t, page.Items)
			assert.Equal(t, tt.want, page.Pagination)
			assert.Contains(t, gotQuery, "category=lamps")
			assert.Contains(t, gotQuery, "per_page=8")
		})
	}
}

func TestProductAPI_Price(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/5", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":5,"title":"Desk","price":129.99,"rating":{"rate":4.5,"count":7}}`)
	})
	p, err := NewProductAPI(c).Get(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("129.99")))
	require.NotNil(t, p.Rating)
	assert.Equal(t, 7, p.Rating.Count)
}

func TestProductAPI_CategoriesShapes(t *testing.T) {
	for name, body := range map[string]string{
		"envelope": `{"categories":["lamps"," desks ",""]}`,
		"array":    `["lamps","desks"]`,
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/products/categories", r.URL.Path)
				_, _ = io.WriteString(w, body)
			})
			cats, err := NewProductAPI(c).Categories(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"lamps", "desks"}, cats)
		})
	}
}

func TestProductAPI_AdminCalls(t *testing.T) {
	var methods []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"product":{"id":11,"title":"New","price":5}}`)
	})
	products := NewProductAPI(c)
	ctx := context.Background()

	created, err := products.Create(ctx, model.ProductInput{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)

	_, err = products.Update(ctx, 11, model.ProductInput{Title: "New"})
	require.NoError(t, err)
	require.NoError(t, products.Delete(ctx, 11))

	assert.Equal(t, []string{"POST /products", "PUT /products/11", "DELETE /products/11"}, methods)
}

func TestOrderAPI_ListMineShapes(t *testing.T) {
	const orders = `[{"id":2,"status":"processing","total":20},{"id":1,"status":"shipped","total":10}]`
	bodies := map[string]string{
		"bare array":   orders,
		"items object": `{"items":` + orders + `}`,
		"orders key":   `{"orders":` + orders + `}`,
	}

	var shapes [][]model.OrderSummary
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/orders/user", r.URL.Path)
				_, _ = io.WriteString(w, body)
			})
			list, err := NewOrderAPI(c).ListMine(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 2)
			shapes = append(shapes, list)
		})
	}
	for _, s := range shapes[1:] {
		assert.Equal(t, shapes[0], s)
	}
}

func TestOrderAPI_ErrorOnlyBodyIsEmpty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"no orders"}`)
	})
	list, err := NewOrderAPI(c).ListMine(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestOrderAPI_CreateAndGet(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req model.OrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Items, 1)
			assert.Equal(t, int64(7), req.Items[0].ProductID)
			writeJSON(w, 201, map[string]any{"order": map[string]any{"id": 99, "status": "processing", "total": 14}})
		case http.MethodGet:
			assert.Equal(t, "/orders/99", r.URL.Path)
			_, _ = io.WriteString(w, `{"id":99,"status":"shipped","trackingNumber":"TRK"}`)
		}
	})
	orders := NewOrderAPI(c)
	ctx := context.Background()

	created, err := orders.Create(ctx, model.OrderRequest{Items: []model.OrderLineRequest{{ProductID: 7, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, int64(99), created.ID)
	assert.Equal(t, model.OrderStatusProcessing, created.Status)

	detail, err := orders.Get(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, "TRK", detail.TrackingNumber)
}
