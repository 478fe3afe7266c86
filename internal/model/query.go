package model

import (
	"net/url"
	"strconv"
)

const DefaultSort = "default"

// ProductFilters are the user-controlled catalog filters.
type ProductFilters struct {
	Category string `json:"category"`
	Search   string `json:"search"`
	Sort     string `json:"sort"`
}

// Pagination mirrors the paging fields of a catalog response.
type Pagination struct {
	Page  int `json:"page"`
	Total int `json:"total"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ProductQuery is everything sent to GET /products.
type ProductQuery struct {
	ProductFilters
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Values encodes the query the way the catalog endpoint expects it.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Sort != "" && q.Sort != DefaultSort {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("per_page", strconv.Itoa(q.Limit))
	}
	return v
}

// ProductPage is a normalized catalog response.
type ProductPage struct {
	Items      []Product
	Pagination Pagination
}
