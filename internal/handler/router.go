package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/clientcore/internal/config"
	"storefront/clientcore/internal/handler/middleware"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metricsHandler http.Handler,
	currentUser middleware.CurrentUser,
	cartHandler *CartHandler,
	favoritesHandler *FavoritesHandler,
	authHandler *AuthHandler,
	orderHandler *OrderHandler,
	productHandler *ProductHandler,
	notificationHandler *NotificationHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/cart", cartHandler.Get)
		v1.POST("/cart/items", cartHandler.Add)
		v1.PATCH("/cart/items/:id", cartHandler.UpdateQuantity)
		v1.DELETE("/cart/items/:id", cartHandler.Remove)
		v1.DELETE("/cart", cartHandler.Clear)

		v1.GET("/favorites", favoritesHandler.List)
		v1.POST("/favorites", favoritesHandler.Add)
		v1.DELETE("/favorites/:id", favoritesHandler.Remove)
		v1.DELETE("/favorites", favoritesHandler.Clear)

		v1.GET("/auth", authHandler.State)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/logout", authHandler.Logout)
		v1.POST("/auth/refresh", authHandler.Refresh)
		v1.DELETE("/auth/error", authHandler.ClearError)

		v1.GET("/products", productHandler.State)
		v1.PUT("/products/filters", productHandler.SetFilters)
		v1.PUT("/products/page", productHandler.SetPage)
		v1.GET("/products/:id", productHandler.Get)
		v1.GET("/categories", productHandler.Categories)

		if notificationHandler != nil {
			v1.GET("/notifications", notificationHandler.Drain)
		}
	}

	// Routes that need a signed-in user
	protected := r.Group("/api/v1")
	protected.Use(middleware.RequireSession(currentUser))
	{
		protected.PUT("/auth/profile", authHandler.UpdateProfile)

		protected.GET("/orders", orderHandler.List)
		protected.GET("/orders/:id", orderHandler.Get)
		protected.POST("/orders", orderHandler.Checkout)
	}

	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.RequireSession(currentUser))
	admin.Use(middleware.AdminOnly())
	{
		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)
	}

	return r
}
