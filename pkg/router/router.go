package router

import (
	"time"

	"virtual-therapy-demo/backend/internal/api"
	"virtual-therapy-demo/backend/internal/ws"
	"virtual-therapy-demo/backend/pkg/config"
	"virtual-therapy-demo/backend/pkg/di"
	"virtual-therapy-demo/backend/pkg/errors"
	"virtual-therapy-demo/backend/pkg/logger"
	"virtual-therapy-demo/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Track server start time for uptime calculations
var startTime = time.Now()

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Hub       *ws.Hub
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	// Use the container's logger
	logger.SetGlobal(container.Logger)

	cfg := config.Get()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(middleware.RequestIDMiddleware())

	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiter := middleware.NewRateLimiter(container.Logger)
	engine.Use(rateLimiter.Middleware())

	hub := ws.NewHub(
		container.MessageService,
		container.SessionService,
		container.SettingsService,
		container.AIService,
		container.Classifier,
		container.AudioService,
		container.Logger,
		ws.HubConfig{
			HistoryExchanges: cfg.Features.HistoryExchanges,
			SynthesisEnabled: cfg.Features.EnableSynthesis,
			DefaultVoice:     cfg.Audio.DefaultVoice,
		},
	)
	go hub.Run()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Hub:       hub,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware())

	jwtAuth := middleware.JWTAuthMiddleware(r.Container.JWTService, r.Logger)

	authHandler := api.NewAuthHandler(r.Container.UserService, r.Logger)
	sessionHandler := api.NewSessionHandler(r.Container.SessionService, r.Logger)
	messageHandler := api.NewMessageHandler(
		r.Container.MessageService,
		r.Container.SessionService,
		r.Container.SettingsService,
		r.Container.AudioService,
		r.Container.AIService,
		r.Container.Classifier,
		r.Logger,
	)
	settingsHandler := api.NewSettingsHandler(r.Container.SettingsService, r.Logger)
	audioHandler := api.NewAudioHandler(r.Container.AudioService, r.Container.AIService, r.Logger)

	r.setupHealthRoutes()

	apiGroup := r.Engine.Group("/api")
	{
		authRoutes := apiGroup.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", jwtAuth, authHandler.Me)
		}

		apiGroup.POST("/sessions", sessionHandler.Create)
		apiGroup.GET("/sessions/:userId", sessionHandler.ListForUser)
		apiGroup.GET("/session/:sessionId", sessionHandler.Get)
		apiGroup.PATCH("/session/:sessionId/title", sessionHandler.Rename)

		apiGroup.POST("/messages", messageHandler.Append)
		apiGroup.GET("/messages/:sessionId", messageHandler.ListForSession)
		apiGroup.POST("/messages/chat", messageHandler.Chat)

		apiGroup.GET("/settings/:userId", settingsHandler.Get)
		apiGroup.PATCH("/settings/:userId", settingsHandler.Update)

		audioRoutes := apiGroup.Group("/audio")
		{
			if r.Config.Features.EnableTranscribe {
				audioRoutes.POST("/transcribe", audioHandler.Transcribe)
			}
			if r.Config.Features.EnableSynthesis {
				audioRoutes.POST("/synthesize", audioHandler.Synthesize)
			}
			audioRoutes.GET("/clips/:id", audioHandler.ServeClip)
		}
	}

	if r.Config.Features.EnableWebSockets {
		r.Engine.GET("/ws", func(c *gin.Context) {
			ws.ServeWs(r.Hub, c)
		})
	}
}

// CORS middleware allowing the browser client, including the headers a
// WebSocket upgrade needs
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
