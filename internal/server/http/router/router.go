package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/healthmart/internal/server/http/handlers"
	"github.com/polkiloo/healthmart/internal/server/http/middleware"
)

// HealthPath serves liveness probes; it is neither compressed nor traced.
const HealthPath = "/healthz"

// HealthChecker reports readiness of backing services.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.StoreFacade, health HealthChecker, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Compression(HealthPath))

	authHandler := handlers.NewAuthHandler(facade)
	productHandler := handlers.NewProductHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)

	requireAuth := middleware.AuthRequired(facade)
	requireAdmin := middleware.AdminRequired(facade)

	engine.GET(HealthPath, func(c *gin.Context) {
		if err := health.HealthCheck(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.PUT("/reset-password/:token", authHandler.ResetPassword)
	auth.GET("/me", requireAuth, authHandler.Me)
	auth.PUT("/profile", requireAuth, authHandler.UpdateProfile)
	auth.PUT("/password", requireAuth, authHandler.UpdatePassword)

	products := api.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.Get)
	products.POST("/:id/reviews", requireAuth, productHandler.AddReview)
	products.POST("", requireAuth, requireAdmin, productHandler.Create)
	products.PUT("/:id", requireAuth, requireAdmin, productHandler.Update)
	products.DELETE("/:id", requireAuth, requireAdmin, productHandler.Delete)
	products.PUT("/:id/stock", requireAuth, requireAdmin, productHandler.SetStock)

	orders := api.Group("/orders", requireAuth)
	orders.POST("/quote", orderHandler.Quote)
	orders.POST("", orderHandler.Create)
	orders.GET("/myorders", orderHandler.Mine)
	orders.GET("/:id", orderHandler.Get)
	orders.GET("", requireAdmin, orderHandler.List)
	orders.PUT("/:id/status", requireAdmin, orderHandler.UpdateStatus)
	orders.PUT("/:id/payment", requireAdmin, orderHandler.UpdatePayment)

	return engine
}
