package handler

import (
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/store"
	"storefront/clientcore/pkg/response"
)

type OrderHandler struct {
	store *store.Store
}

func NewOrderHandler(s *store.Store) *OrderHandler {
	return &OrderHandler{store: s}
}

type CheckoutRequest struct {
	ShippingAddress model.Address `json:"shipping_address"`
	PaymentMethod   string        `json:"payment_method" binding:"required"`
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.store.FetchUserOrders(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []model.OrderSummary{}
	}
	response.Success(c, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	order, err := h.store.FetchOrderDetails(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, order)
}

// Checkout places an order for the current cart.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.store.Checkout(c.Request.Context(), req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, order)
}
