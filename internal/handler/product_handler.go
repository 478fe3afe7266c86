package handler

import (
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/store"
	"storefront/clientcore/pkg/response"
)

type ProductHandler struct {
	store *store.Store
}

func NewProductHandler(s *store.Store) *ProductHandler {
	return &ProductHandler{store: s}
}

type SetPageRequest struct {
	Page int `json:"page" binding:"required"`
}

// State returns the product slice: current page of items, filters and
// pagination.
func (h *ProductHandler) State(c *gin.Context) {
	response.Success(c, h.store.State().Products)
}

func (h *ProductHandler) SetFilters(c *gin.Context) {
	var req model.ProductFilters
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.store.SetFilters(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.store.State().Products)
}

func (h *ProductHandler) SetPage(c *gin.Context) {
	var req SetPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.store.SetPage(c.Request.Context(), req.Page); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, h.store.State().Products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.store.FetchProductByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *ProductHandler) Categories(c *gin.Context) {
	cats, err := h.store.FetchCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	response.Success(c, cats)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req model.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.store.CreateProduct(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var req model.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, err := h.store.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.store.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}
