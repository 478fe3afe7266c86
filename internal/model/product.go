package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rating is the catalog's review summary for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a catalog product snapshot as served by GET /products.
type Product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Rating      *Rating         `json:"rating,omitempty"`
	Stock       int             `json:"stock,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

// FavoriteEntry is a product snapshot kept in the favorites list, keyed by ID.
type FavoriteEntry = Product

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
}
