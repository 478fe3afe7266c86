package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/clientcore/internal/config"
)

// CORS lets the local view layer, served from another origin, call the façade.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	headers := append([]string{"X-Request-ID"}, cfg.AllowedHeaders...)
	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     headers,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
}
