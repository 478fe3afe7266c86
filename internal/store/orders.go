package store

import (
	"context"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/notify"
)

const (
	OpCreateOrder       = "orders/create"
	OpFetchUserOrders   = "orders/fetchUserOrders"
	OpFetchOrderDetails = "orders/fetchOrderDetails"
)

type OrderState struct {
	Orders       []model.OrderSummary `json:"orders"`
	CurrentOrder *model.OrderDetail   `json:"currentOrder"`
	Loading      bool                 `json:"loading"`
	Error        string               `json:"error,omitempty"`
}

type ClearOrderError struct{}

func (ClearOrderError) Type() string { return "orders/clearError" }

type ClearCurrentOrder struct{}

func (ClearCurrentOrder) Type() string { return "orders/clearCurrentOrder" }

func reduceOrders(s OrderState, a Action) OrderState {
	switch a := a.(type) {
	case ClearOrderError:
		s.Error = ""
		return s
	case ClearCurrentOrder:
		s.CurrentOrder = nil
		return s
	case ForceLogout:
		return OrderState{}
	case AsyncAction:
		if a.Op != OpCreateOrder && a.Op != OpFetchUserOrders && a.Op != OpFetchOrderDetails {
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
		case OpCreateOrder:
			order, _ := a.Payload.(*model.OrderDetail)
			if order == nil {
				return s
			}
			s.CurrentOrder = order
			orders := make([]model.OrderSummary, 0, len(s.Orders)+1)
			orders = append(orders, *order)
			s.Orders = append(orders, s.Orders...)
		case OpFetchUserOrders:
			orders, _ := a.Payload.([]model.OrderSummary)
			if orders == nil {
				orders = []model.OrderSummary{}
			}
			s.Orders = orders
		case OpFetchOrderDetails:
			s.CurrentOrder, _ = a.Payload.(*model.OrderDetail)
		}
	}
	return s
}

func (s *Store) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.OrderDetail, error) {
	s.pending(ctx, OpCreateOrder)
	order, err := s.orders.Create(ctx, req)
	if err != nil {
		s.rejected(ctx, OpCreateOrder, err)
		return nil, err
	}
	s.fulfilled(ctx, OpCreateOrder, order)
	return order, nil
}

// Checkout places an order for the current cart and clears the cart once the
// order has been accepted. The cart is left untouched on failure.
func (s *Store) Checkout(ctx context.Context, shipping model.Address, paymentMethod string) (*model.OrderDetail, error) {
	lines := s.State().Cart.Lines
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	order, err := s.CreateOrder(ctx, model.OrderRequestFromCart(lines, shipping, paymentMethod))
	if err != nil {
		s.notifier.Notify("Could not place order: "+errorMessage(err), notify.KindError)
		return nil, err
	}
	s.ClearCart(ctx)
	s.notifier.Notify("Order placed", notify.KindSuccess)
	return order, nil
}

func (s *Store) FetchUserOrders(ctx context.Context) ([]model.OrderSummary, error) {
	s.pending(ctx, OpFetchUserOrders)
	orders, err := s.orders.ListMine(ctx)
	if err != nil {
		s.rejected(ctx, OpFetchUserOrders, err)
		return nil, err
	}
	s.fulfilled(ctx, OpFetchUserOrders, orders)
	return orders, nil
}

func (s *Store) FetchOrderDetails(ctx context.Context, id int64) (*model.OrderDetail, error) {
	s.pending(ctx, OpFetchOrderDetails)
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		s.rejected(ctx, OpFetchOrderDetails, err)
		return nil, err
	}
	s.fulfilled(ctx, OpFetchOrderDetails, order)
	return order, nil
}

func (s *Store) ClearOrderError(ctx context.Context) {
	s.Dispatch(ctx, ClearOrderError{})
}

func (s *Store) ClearCurrentOrder(ctx context.Context) {
	s.Dispatch(ctx, ClearCurrentOrder{})
}
