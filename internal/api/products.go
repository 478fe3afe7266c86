package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/clientcore/internal/model"
)

type ProductAPI struct {
	c *Client
}

func NewProductAPI(c *Client) *ProductAPI {
	return &ProductAPI{c: c}
}

func (p *ProductAPI) List(ctx context.Context, query model.ProductQuery) (model.ProductPage, error) {
	body, err := p.c.do(ctx, "products.list", http.MethodGet, "/products", query.Values(), nil)
	if err != nil {
		return model.ProductPage{}, err
	}
	return normalizeProducts(body, query)
}

func (p *ProductAPI) Get(ctx context.Context, id int64) (*model.Product, error) {
	body, err := p.c.do(ctx, "products.get", http.MethodGet, "/products/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeProduct(body)
}

func (p *ProductAPI) Categories(ctx context.Context) ([]string, error) {
	body, err := p.c.do(ctx, "products.categories", http.MethodGet, "/products/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	return normalizeCategories(body)
}

func (p *ProductAPI) Create(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	body, err := p.c.do(ctx, "products.create", http.MethodPost, "/products", nil, in)
	if err != nil {
		return nil, err
	}
	return decodeProduct(body)
}

func (p *ProductAPI) Update(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	body, err := p.c.do(ctx, "products.update", http.MethodPut, "/products/"+strconv.FormatInt(id, 10), nil, in)
	if err != nil {
		return nil, err
	}
	return decodeProduct(body)
}

func (p *ProductAPI) Delete(ctx context.Context, id int64) error {
	_, err := p.c.do(ctx, "products.delete", http.MethodDelete, "/products/"+strconv.FormatInt(id, 10), nil, nil)
	return err
}

// decodeProduct accepts a bare product or {product: ...}.
func decodeProduct(body []byte) (*model.Product, error) {
	var env struct {
		Product *model.Product `json:"product"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, newInvalidResponse(err)
	}
	if env.Product != nil {
		return env.Product, nil
	}
	var bare model.Product
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, newInvalidResponse(err)
	}
	return &bare, nil
}
