package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Address is the free-form shipping address forwarded to the orders API.
type Address struct {
	FullName   string `json:"full_name,omitempty"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type OrderItem struct {
	ID        int64           `json:"id,omitempty"`
	OrderID   int64           `json:"orderId,omitempty"`
	ProductID int64           `json:"productId"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderDetail is a full order as returned by POST /orders and GET /orders/{id}.
type OrderDetail struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Status          OrderStatus     `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	PaymentMethod   string          `json:"paymentMethod"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
}

// OrderSummary is a row of the user's order history. The backend serves the
// same document for list and detail, so the types coincide.
type OrderSummary = OrderDetail

// OrderLineRequest is one item of an order creation request.
type OrderLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the POST /orders body.
type OrderRequest struct {
	Items           []OrderLineRequest `json:"items"`
	ShippingAddress Address            `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	ShippingCost    decimal.Decimal    `json:"shipping_cost"`
	Tax             decimal.Decimal    `json:"tax"`
}

// OrderRequestFromCart builds a creation request from cart lines.
func OrderRequestFromCart(lines []CartLine, shipping Address, paymentMethod string) OrderRequest {
	items := make([]OrderLineRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderLineRequest{ProductID: l.ID, Quantity: l.Quantity})
	}
	return OrderRequest{
		Items:           items,
		ShippingAddress: shipping,
		PaymentMethod:   paymentMethod,
	}
}
