package store

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/notify"
)

type CartState struct {
	Lines []model.CartLine `json:"lines"`
}

// Total is Σ(price × quantity), recomputed from the lines on every call.
func (c CartState) Total() decimal.Decimal {
	return model.CartTotal(c.Lines)
}

// ItemCount is the number of distinct products in the cart.
func (c CartState) ItemCount() int {
	return len(c.Lines)
}

func (c CartState) find(id int64) int {
	for i, l := range c.Lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

type AddToCart struct{ Product model.Product }

func (AddToCart) Type() string { return "cart/add" }

// MergeCartLine adds Quantity units of Product, aggregating with an existing
// line for the same product. Quantities below 1 count as 1.
type MergeCartLine struct {
	Product  model.Product
	Quantity int
}

func (MergeCartLine) Type() string { return "cart/merge" }

type RemoveFromCart struct{ ProductID int64 }

func (RemoveFromCart) Type() string { return "cart/remove" }

type UpdateQuantity struct {
	ProductID int64
	Quantity  int
}

func (UpdateQuantity) Type() string { return "cart/updateQuantity" }

type ClearCart struct{}

func (ClearCart) Type() string { return "cart/clear" }

func reduceCart(c CartState, a Action) CartState {
	switch a := a.(type) {
	case AddToCart:
		return mergeLine(c, a.Product, 1)
	case MergeCartLine:
		return mergeLine(c, a.Product, max(1, a.Quantity))
	case RemoveFromCart:
		i := c.find(a.ProductID)
		if i < 0 {
			return c
		}
		lines := make([]model.CartLine, 0, len(c.Lines)-1)
		lines = append(lines, c.Lines[:i]...)
		lines = append(lines, c.Lines[i+1:]...)
		return CartState{Lines: lines}
	case UpdateQuantity:
		i := c.find(a.ProductID)
		if i < 0 {
			return c
		}
		lines := cloneLines(c.Lines)
		lines[i].Quantity = max(1, a.Quantity)
		return CartState{Lines: lines}
	case ClearCart:
		return CartState{Lines: []model.CartLine{}}
	}
	return c
}

func mergeLine(c CartState, p model.Product, qty int) CartState {
	lines := cloneLines(c.Lines)
	if i := c.find(p.ID); i >= 0 {
		lines[i].Quantity += qty
		return CartState{Lines: lines}
	}
	return CartState{Lines: append(lines, model.CartLine{Product: p, Quantity: qty})}
}

func cloneLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, len(lines), len(lines)+1)
	copy(out, lines)
	return out
}

func nonNilLines(lines []model.CartLine) []model.CartLine {
	if lines == nil {
		return []model.CartLine{}
	}
	return lines
}

func (s *Store) AddToCart(ctx context.Context, p model.Product) {
	s.Dispatch(ctx, AddToCart{Product: p})
	s.notifier.Notify(p.Title+" added to cart", notify.KindSuccess)
}

// RemoveFromCart is a no-op, apart from the notification, when the product is
// not in the cart.
func (s *Store) RemoveFromCart(ctx context.Context, productID int64) {
	s.Dispatch(ctx, RemoveFromCart{ProductID: productID})
	s.notifier.Notify("Item removed from cart", notify.KindInfo)
}

func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	s.Dispatch(ctx, UpdateQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Store) ClearCart(ctx context.Context) {
	s.Dispatch(ctx, ClearCart{})
}

// MergeCartLine folds a line in without notifying. Used by the migration.
func (s *Store) MergeCartLine(ctx context.Context, p model.Product, quantity int) {
	s.Dispatch(ctx, MergeCartLine{Product: p, Quantity: quantity})
}
