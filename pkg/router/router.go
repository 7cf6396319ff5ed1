package router

import (
	"crm-copilot/backend/internal/api"
	"crm-copilot/backend/pkg/config"
	"crm-copilot/backend/pkg/di"
	"crm-copilot/backend/pkg/errors"
	"crm-copilot/backend/pkg/logger"
	"crm-copilot/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	logger.SetGlobal(container.Logger)
	cfg := config.Get()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiterOptions := middleware.DefaultRateLimiterOptions()
	rateLimiterOptions.Limit = rate.Limit(cfg.Security.RateLimit)
	rateLimiterOptions.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rateLimiterOptions)
	engine.Use(rateLimiter.Middleware())

	// Run the hub's register/unregister loop for the process lifetime
	go container.Hub.Run()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	// Real-time chat channel; the bearer credential is checked before
	// the upgrade
	r.Engine.GET("/ws/chat", r.Container.WSHandler.ServeWS)

	authenticate := middleware.Authenticate(r.Container.Verifier, r.Logger)

	v1 := r.Engine.Group("/api/v1")
	{
		conversationHandler := api.NewConversationHandler(r.Container.ChatService, r.Logger)
		v1.GET("/conversations", authenticate, conversationHandler.List)
	}

	r.setupHealthRoutes()
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
