package store

import (
	"context"

	"storefront/clientcore/internal/model"
)

const (
	OpFetchProducts    = "products/fetch"
	OpFetchProductByID = "products/fetchById"
	OpFetchCategories  = "products/fetchCategories"
	OpCreateProduct    = "products/create"
	OpUpdateProduct    = "products/update"
	OpDeleteProduct    = "products/delete"
)

type ProductState struct {
	Items      []model.Product      `json:"items"`
	Selected   *model.Product       `json:"selected"`
	Categories []string             `json:"categories"`
	Filters    model.ProductFilters `json:"filters"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	Pagination model.Pagination     `json:"pagination"`
	Loading    bool                 `json:"loading"`
	Error      string               `json:"error,omitempty"`
}

func newProductState(limit int) ProductState {
	return ProductState{
		Items:      []model.Product{},
		Categories: []string{},
		Filters:    model.ProductFilters{Sort: model.DefaultSort},
		Page:       1,
		Limit:      limit,
		Pagination: model.Pagination{Page: 1, Limit: limit},
	}
}

// Query is what the next catalog fetch sends.
func (p ProductState) Query() model.ProductQuery {
	return model.ProductQuery{ProductFilters: p.Filters, Page: p.Page, Limit: p.Limit}
}

// SetFilters replaces the filters and resets the page to 1.
type SetFilters struct{ Filters model.ProductFilters }

func (SetFilters) Type() string { return "products/setFilters" }

type SetPage struct{ Page int }

func (SetPage) Type() string { return "products/setPage" }

type ClearProductError struct{}

func (ClearProductError) Type() string { return "products/clearError" }

type ClearSelectedProduct struct{}

func (ClearSelectedProduct) Type() string { return "products/clearSelected" }

func reduceProducts(s ProductState, a Action) ProductState {
	switch a := a.(type) {
	case SetFilters:
		s.Filters = a.Filters
		if s.Filters.Sort == "" {
			s.Filters.Sort = model.DefaultSort
		}
		s.Page = 1
		return s
	case SetPage:
		s.Page = max(1, a.Page)
		return s
	case ClearProductError:
		s.Error = ""
		return s
	case ClearSelectedProduct:
		s.Selected = nil
		return s
	case AsyncAction:
		return reduceProductAsync(s, a)
	}
	return s
}

func reduceProductAsync(s ProductState, a AsyncAction) ProductState {
	switch a.Op {
	case OpFetchProducts, OpFetchProductByID, OpFetchCategories, OpCreateProduct, OpUpdateProduct, OpDeleteProduct:
	default:
		return s
	}
	switch a.Phase {
	case PhasePending:
		s.Loading = true
		s.Error = ""
		return s
	case PhaseRejected:
		s.Loading = false
		s.Error = errorMessage(a.Err)
		return s
	}

	s.Loading = false
	switch a.Op {
	case OpFetchProducts:
		page, _ := a.Payload.(model.ProductPage)
		s.Items = page.Items
		if s.Items == nil {
			s.Items = []model.Product{}
		}
		s.Pagination = page.Pagination
	case OpFetchProductByID:
		s.Selected, _ = a.Payload.(*model.Product)
	case OpFetchCategories:
		cats, _ := a.Payload.([]string)
		if cats == nil {
			cats = []string{}
		}
		s.Categories = cats
	case OpCreateProduct:
		if p, ok := a.Payload.(*model.Product); ok && p != nil {
			items := make([]model.Product, len(s.Items), len(s.Items)+1)
			copy(items, s.Items)
			s.Items = append(items, *p)
		}
	case OpUpdateProduct:
		if p, ok := a.Payload.(*model.Product); ok && p != nil {
			items := make([]model.Product, len(s.Items))
			copy(items, s.Items)
			for i := range items {
				if items[i].ID == p.ID {
					items[i] = *p
				}
			}
			s.Items = items
			if s.Selected != nil && s.Selected.ID == p.ID {
				s.Selected = p
			}
		}
	case OpDeleteProduct:
		id, _ := a.Payload.(int64)
		items := make([]model.Product, 0, len(s.Items))
		for _, it := range s.Items {
			if it.ID != id {
				items = append(items, it)
			}
		}
		s.Items = items
		if s.Selected != nil && s.Selected.ID == id {
			s.Selected = nil
		}
	}
	return s
}

// FetchProducts loads the page described by the current filters and cursor.
func (s *Store) FetchProducts(ctx context.Context) (model.ProductPage, error) {
	query := s.State().Products.Query()
	s.pending(ctx, OpFetchProducts)
	page, err := s.products.List(ctx, query)
	if err != nil {
		s.rejected(ctx, OpFetchProducts, err)
		return model.ProductPage{}, err
	}
	s.fulfilled(ctx, OpFetchProducts, page)
	return page, nil
}

// SetFilters applies new filters, resets to page 1 and fetches.
func (s *Store) SetFilters(ctx context.Context, f model.ProductFilters) (model.ProductPage, error) {
	s.Dispatch(ctx, SetFilters{Filters: f})
	return s.FetchProducts(ctx)
}

func (s *Store) SetPage(ctx context.Context, page int) (model.ProductPage, error) {
	s.Dispatch(ctx, SetPage{Page: page})
	return s.FetchProducts(ctx)
}

func (s *Store) FetchProductByID(ctx context.Context, id int64) (*model.Product, error) {
	s.pending(ctx, OpFetchProductByID)
	p, err := s.products.Get(ctx, id)
	if err != nil {
		s.rejected(ctx, OpFetchProductByID, err)
		return nil, err
	}
	s.fulfilled(ctx, OpFetchProductByID, p)
	return p, nil
}

func (s *Store) FetchCategories(ctx context.Context) ([]string, error) {
	s.pending(ctx, OpFetchCategories)
	cats, err := s.products.Categories(ctx)
	if err != nil {
		s.rejected(ctx, OpFetchCategories, err)
		return nil, err
	}
	s.fulfilled(ctx, OpFetchCategories, cats)
	return cats, nil
}

func (s *Store) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	s.pending(ctx, OpCreateProduct)
	p, err := s.products.Create(ctx, in)
	if err != nil {
		s.rejected(ctx, OpCreateProduct, err)
		return nil, err
	}
	s.fulfilled(ctx, OpCreateProduct, p)
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, in model.ProductInput) (*model.Product, error) {
	s.pending(ctx, OpUpdateProduct)
	p, err := s.products.Update(ctx, id, in)
	if err != nil {
		s.rejected(ctx, OpUpdateProduct, err)
		return nil, err
	}
	s.fulfilled(ctx, OpUpdateProduct, p)
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.pending(ctx, OpDeleteProduct)
	if err := s.products.Delete(ctx, id); err != nil {
		s.rejected(ctx, OpDeleteProduct, err)
		return err
	}
	s.fulfilled(ctx, OpDeleteProduct, id)
	return nil
}

func (s *Store) ClearProductError(ctx context.Context) {
	s.Dispatch(ctx, ClearProductError{})
}

func (s *Store) ClearSelectedProduct(ctx context.Context) {
	s.Dispatch(ctx, ClearSelectedProduct{})
}
