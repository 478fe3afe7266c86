package middleware

import (
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/model"
	"storefront/clientcore/pkg/response"
)

// AdminOnly checks that the signed-in user is an admin.
// Must be used after RequireSession.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(ContextKeyUser)
		if !exists {
			response.Unauthorized(c, "sign in required")
			c.Abort()
			return
		}
		user, ok := val.(*model.Profile)
		if !ok || !user.IsAdmin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
