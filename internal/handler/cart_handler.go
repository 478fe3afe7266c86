package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/store"
	"storefront/clientcore/pkg/response"
)

type CartHandler struct {
	store *store.Store
}

func NewCartHandler(s *store.Store) *CartHandler {
	return &CartHandler{store: s}
}

type cartView struct {
	Lines     []model.CartLine `json:"lines"`
	Total     decimal.Decimal  `json:"total"`
	ItemCount int              `json:"itemCount"`
}

func viewCart(c store.CartState) cartView {
	lines := c.Lines
	if lines == nil {
		lines = []model.CartLine{}
	}
	return cartView{Lines: lines, Total: c.Total(), ItemCount: c.ItemCount()}
}

type UpdateQuantityRequest struct {
	// Quantity below 1 is clamped to 1 by the store.
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *CartHandler) Get(c *gin.Context) {
	response.Success(c, viewCart(h.store.State().Cart))
}

func (h *CartHandler) Add(c *gin.Context) {
	var p model.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if p.ID <= 0 {
		response.BadRequest(c, "product id is required")
		return
	}
	h.store.AddToCart(c.Request.Context(), p)
	response.Success(c, viewCart(h.store.State().Cart))
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.store.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	response.Success(c, viewCart(h.store.State().Cart))
}

func (h *CartHandler) Remove(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.store.RemoveFromCart(c.Request.Context(), id)
	response.Success(c, viewCart(h.store.State().Cart))
}

func (h *CartHandler) Clear(c *gin.Context) {
	h.store.ClearCart(c.Request.Context())
	response.Success(c, viewCart(h.store.State().Cart))
}
