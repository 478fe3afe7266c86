package handler

import (
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/internal/store"
	"storefront/clientcore/pkg/response"
)

type AuthHandler struct {
	store *store.Store
}

func NewAuthHandler(s *store.Store) *AuthHandler {
	return &AuthHandler{store: s}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// State returns the auth slice as is, including the last error details.
func (h *AuthHandler) State(c *gin.Context) {
	response.Success(c, h.store.State().Auth)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.store.Login(c.Request.Context(), model.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

// Register binds without validation; the store validates the form itself and
// reports every field at once.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.store.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, h.store.State().Auth)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.store.Logout(c.Request.Context()); err != nil {
		_ = c.Error(err)
	}
	response.Success(c, h.store.State().Auth)
}

// Refresh re-reads the current user from the server.
func (h *AuthHandler) Refresh(c *gin.Context) {
	user, err := h.store.GetCurrentUser(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req model.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, err := h.store.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *AuthHandler) ClearError(c *gin.Context) {
	h.store.ClearAuthError(c.Request.Context())
	response.Success(c, h.store.State().Auth)
}
