package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/delivery/http/handler"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/delivery/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	DevMode        bool
	AllowedOrigins []string
	LogRequests    bool
}

type Router struct {
	cfg            RouterConfig
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(
	cfg RouterConfig,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		cfg:            cfg,
		authHandler:    authHandler,
		profileHandler: profileHandler,
		authMiddleware: authMiddleware,
	}
}

func (r *Router) Setup() (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	if r.cfg.LogRequests {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(r.corsConfig()))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			if r.cfg.DevMode {
				auth.POST("/dev-token", r.authHandler.DevToken)
			}
			auth.POST("/logout", r.authMiddleware.RequireAuth(), r.authHandler.Logout)
			auth.GET("/me", r.authMiddleware.RequireAuth(), r.authHandler.Me)
		}

		// Directory reads are public; emails stay redacted for anonymous viewers
		profiles := v1.Group("/profiles")
		{
			profiles.GET("", r.authMiddleware.OptionalAuth(), r.profileHandler.ListProfiles)
			profiles.GET("/me", r.authMiddleware.RequireAuth(), r.profileHandler.GetMyProfile)
			profiles.GET("/:id", r.authMiddleware.OptionalAuth(), r.profileHandler.GetProfile)
			profiles.PUT("/:id", r.authMiddleware.RequireAuth(), r.profileHandler.UpdateProfile)
			profiles.POST("/:id/description-suggestions", r.authMiddleware.RequireAuth(), r.profileHandler.SuggestDescriptions)
		}
	}

	return router, nil
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range r.cfg.AllowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = r.cfg.AllowedOrigins
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cfg
}
