// Package http wires the gin engine: middleware chain, public
// authentication routes, and the token-protected chat surface.
package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/astrochat/astrochat-backend/internal/config"
	"github.com/astrochat/astrochat-backend/internal/http/handler"
	"github.com/astrochat/astrochat-backend/internal/http/middleware"
	"github.com/astrochat/astrochat-backend/internal/metrics"
)

// RouterParams collects everything the router needs.
type RouterParams struct {
	Config    config.Config
	Logger    *zap.Logger
	Auth      *handler.AuthHandler
	Chat      *handler.ChatHandler
	Guard     *middleware.Auth
	Limiter   *middleware.RateLimiter
	Collector *metrics.Collector
}

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(p RouterParams) *gin.Engine {
	if p.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.CORS(p.Config))
	engine.Use(p.Limiter.Handler())
	engine.Use(p.Collector.Middleware())

	engine.GET("/metrics", gin.WrapH(p.Collector.Handler()))

	api := engine.Group("/api")
	{
		api.GET("/health", handler.Health)

		api.POST("/register", p.Auth.Register)
		api.POST("/verify", p.Auth.Verify)
		api.POST("/login", p.Auth.Login)
		api.POST("/send-otp", p.Auth.SendOTP)
		api.POST("/verify-otp", p.Auth.VerifyOTP)
		api.POST("/oauth/login", p.Auth.FederatedLogin)

		protected := api.Group("")
		protected.Use(p.Guard.RequireToken)
		{
			protected.POST("/profile", p.Auth.SaveProfile)
			protected.POST("/chat", p.Chat.Send)
			protected.GET("/chat/history", p.Chat.History)
		}
	}

	return engine
}
