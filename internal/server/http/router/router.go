package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/topupshop/internal/config"
	"github.com/polkiloo/topupshop/internal/server/http/handlers"
	"github.com/polkiloo/topupshop/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ShopFacade, health handlers.HealthChecker, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	if len(cfg.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Content-Encoding", "Authorization"},
			ExposeHeaders:    []string{"Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	engine.Use(middleware.DecompressRequest(middleware.DefaultMaxBodyBytes))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	callbackHandler := handlers.NewCallbackHandler(facade)
	balanceHandler := handlers.NewBalanceHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)
	eventsHandler := handlers.NewEventsHandler(facade)

	api := engine.Group("/api")
	api.GET("/healthz", handlers.Health(health))

	// The event stream must not sit behind response compression.
	stream := api.Group("")
	stream.Use(middleware.AuthRequired(facade))
	stream.GET("/orders/events", eventsHandler.Stream)

	compressed := api.Group("")
	compressed.Use(gzip.Gzip(gzip.DefaultCompression))

	auth := compressed.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	compressed.POST("/orders/callback",
		middleware.RateLimit(middleware.NewIPRateLimiter(cfg.CallbackRateLimit)),
		callbackHandler.Receive,
	)

	user := compressed.Group("")
	user.Use(middleware.AuthRequired(facade))
	user.POST("/orders", orderHandler.Place)
	user.GET("/orders", orderHandler.List)
	user.GET("/orders/:id", orderHandler.Get)
	user.GET("/orders/:id/check-status", orderHandler.CheckStatus)
	user.GET("/balance", balanceHandler.Summary)
	user.GET("/balance/entries", balanceHandler.Entries)
	user.POST("/topups", balanceHandler.RequestTopup)
	user.GET("/topups", balanceHandler.Topups)

	admin := user.Group("/admin")
	admin.Use(middleware.AdminRequired(facade))
	admin.GET("/topups", adminHandler.Topups)
	admin.PATCH("/topups/:id/approve", adminHandler.ApproveTopup)
	admin.PATCH("/topups/:id/reject", adminHandler.RejectTopup)
	admin.PATCH("/orders/:id/status", adminHandler.SetOrderStatus)
	admin.PATCH("/users/:id/ban", adminHandler.SetUserBanned)

	return engine
}
