package handler

import (
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/notify"
	"storefront/clientcore/pkg/response"
)

type NotificationHandler struct {
	recorder *notify.Recorder
}

func NewNotificationHandler(r *notify.Recorder) *NotificationHandler {
	return &NotificationHandler{recorder: r}
}

// Drain returns and forgets every notification raised since the last call.
func (h *NotificationHandler) Drain(c *gin.Context) {
	response.Success(c, h.recorder.Drain())
}
