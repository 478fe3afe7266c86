package handler

import (
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/store"
	"storefront/clientcore/pkg/response"
)

type FavoritesHandler struct {
	store *store.Store
}

func NewFavoritesHandler(s *store.Store) *FavoritesHandler {
	return &FavoritesHandler{store: s}
}

func (h *FavoritesHandler) items() []model.FavoriteEntry {
	items := h.store.State().Favorites.Items
	if items == nil {
		return []model.FavoriteEntry{}
	}
	return items
}

func (h *FavoritesHandler) List(c *gin.Context) {
	response.Success(c, h.items())
}

func (h *FavoritesHandler) Add(c *gin.Context) {
	var p model.FavoriteEntry
	if err := c.ShouldBindJSON(&p); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if p.ID <= 0 {
		response.BadRequest(c, "product id is required")
		return
	}
	h.store.AddToFavorites(c.Request.Context(), p)
	response.Success(c, h.items())
}

func (h *FavoritesHandler) Remove(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.store.RemoveFromFavorites(c.Request.Context(), id)
	response.Success(c, h.items())
}

func (h *FavoritesHandler) Clear(c *gin.Context) {
	h.store.ClearFavorites(c.Request.Context())
	response.Success(c, h.items())
}
