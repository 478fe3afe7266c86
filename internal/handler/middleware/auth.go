package middleware

import (
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/pkg/response"
)

// CurrentUser reports the signed-in user, or nil when anonymous.
type CurrentUser func() *model.Profile

const ContextKeyUser = "user"

// RequireSession rejects requests while the store holds no signed-in user.
func RequireSession(current CurrentUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := current()
		if user == nil {
			response.Unauthorized(c, "sign in required")
			c.Abort()
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}
