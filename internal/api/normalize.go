package api

import (
	"bytes"
	"encoding/json"
	"strings"

	"storefront/clientcore/internal/model"
)

// The backend answers several endpoints with either a bare JSON array or an
// object envelope. Everything is reduced to one shape here.

func isArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}

type productEnvelope struct {
	Items    []model.Product `json:"items"`
	Products []model.Product `json:"products"`
	Page     int             `json:"page"`
	PerPage  int             `json:"per_page"`
	Limit    int             `json:"limit"`
	Total    int             `json:"total"`
	Pages    int             `json:"pages"`
}

// normalizeProducts accepts {items|products, page, per_page, total, pages} or
// a bare array. A bare array is reported as a single page.
func normalizeProducts(body []byte, query model.ProductQuery) (model.ProductPage, error) {
	if isArray(body) {
		var items []model.Product
		if err := json.Unmarshal(body, &items); err != nil {
			return model.ProductPage{}, newInvalidResponse(err)
		}
		limit := query.Limit
		if limit <= 0 {
			limit = len(items)
		}
		return model.ProductPage{
			Items:      nonNilProducts(items),
			Pagination: model.Pagination{Page: 1, Total: len(items), Limit: limit, Pages: 1},
		}, nil
	}

	var env productEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return model.ProductPage{}, newInvalidResponse(err)
	}
	items := env.Items
	if items == nil {
		items = env.Products
	}
	p := model.Pagination{Page: env.Page, Total: env.Total, Limit: env.PerPage, Pages: env.Pages}
	if p.Limit == 0 {
		p.Limit = env.Limit
	}
	if p.Limit == 0 {
		p.Limit = query.Limit
	}
	if p.Page == 0 {
		p.Page = max(query.Page, 1)
	}
	if p.Total == 0 {
		p.Total = len(items)
	}
	if p.Pages == 0 && p.Limit > 0 {
		p.Pages = (p.Total + p.Limit - 1) / p.Limit
	}
	return model.ProductPage{Items: nonNilProducts(items), Pagination: p}, nil
}

func nonNilProducts(items []model.Product) []model.Product {
	if items == nil {
		return []model.Product{}
	}
	return items
}

// normalizeOrders accepts {items:[...]}, {orders:[...]} or a bare array. An
// object that carries only an error message reads as no orders.
func normalizeOrders(body []byte) ([]model.OrderSummary, error) {
	if isArray(body) {
		var orders []model.OrderSummary
		if err := json.Unmarshal(body, &orders); err != nil {
			return nil, newInvalidResponse(err)
		}
		if orders == nil {
			orders = []model.OrderSummary{}
		}
		return orders, nil
	}

	var env struct {
		Items  []model.OrderSummary `json:"items"`
		Orders []model.OrderSummary `json:"orders"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, newInvalidResponse(err)
	}
	orders := env.Items
	if orders == nil {
		orders = env.Orders
	}
	if orders == nil {
		orders = []model.OrderSummary{}
	}
	return orders, nil
}

// normalizeCategories accepts {categories:[...]} or a bare array of names.
func normalizeCategories(body []byte) ([]string, error) {
	var names []string
	if isArray(body) {
		if err := json.Unmarshal(body, &names); err != nil {
			return nil, newInvalidResponse(err)
		}
	} else {
		var env struct {
			Categories []string `json:"categories"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, newInvalidResponse(err)
		}
		names = env.Categories
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

// normalizeSession accepts a bare profile or {user: profile}, with an optional
// token or access_token alongside.
func normalizeSession(body []byte) (*Session, error) {
	var env struct {
		User        *model.Profile `json:"user"`
		Token       string         `json:"token"`
		AccessToken string         `json:"access_token"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, newInvalidResponse(err)
	}
	user := env.User
	if user == nil {
		var bare model.Profile
		if err := json.Unmarshal(body, &bare); err != nil {
			return nil, newInvalidResponse(err)
		}
		user = &bare
	}
	if user.ID == 0 && user.Email == "" {
		return nil, newInvalidResponse(nil)
	}
	token := env.Token
	if token == "" {
		token = env.AccessToken
	}
	return &Session{User: user, Token: token}, nil
}
