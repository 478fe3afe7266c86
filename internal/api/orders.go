package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/clientcore/internal/model"
)

type OrderAPI struct {
	c *Client
}

func NewOrderAPI(c *Client) *OrderAPI {
	return &OrderAPI{c: c}
}

func (o *OrderAPI) Create(ctx context.Context, req model.OrderRequest) (*model.OrderDetail, error) {
	body, err := o.c.do(ctx, "orders.create", http.MethodPost, "/orders", nil, req)
	if err != nil {
		return nil, err
	}
	return decodeOrder(body)
}

// ListMine returns the signed-in user's orders, newest first as served.
func (o *OrderAPI) ListMine(ctx context.Context) ([]model.OrderSummary, error) {
	body, err := o.c.do(ctx, "orders.list", http.MethodGet, "/orders/user", nil, nil)
	if err != nil {
		return nil, err
	}
	return normalizeOrders(body)
}

func (o *OrderAPI) Get(ctx context.Context, id int64) (*model.OrderDetail, error) {
	body, err := o.c.do(ctx, "orders.get", http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOrder(body)
}

// decodeOrder accepts a bare order or {order: ...}.
func decodeOrder(body []byte) (*model.OrderDetail, error) {
	var env struct {
		Order *model.OrderDetail `json:"order"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, newInvalidResponse(err)
	}
	if env.Order != nil {
		return env.Order, nil
	}
	var bare model.OrderDetail
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, newInvalidResponse(err)
	}
	return &bare, nil
}
