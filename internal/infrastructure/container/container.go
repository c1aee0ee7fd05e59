package container

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/config"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/delivery/http"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/delivery/http/handler"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/delivery/http/middleware"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/infrastructure/database"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/infrastructure/events"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/infrastructure/gemini"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/infrastructure/server"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository/postgres"
	redisrepo "github.com/lisiobuddy/lisiobuddy-backend/internal/repository/redis"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/usecase/auth"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/usecase/profile"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	DB        *sqlx.DB
	Redis     *redis.Client
	Publisher events.Publisher
	Gemini    *gemini.GeminiClient
	Server    *server.Server
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	c.Redis = redisClient

	publisher, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	c.Publisher = publisher

	// Description suggestions fall back to canned drafts without a client.
	geminiClient, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		fmt.Printf("Warning: Gemini client disabled: %v\n", err)
	}
	c.Gemini = geminiClient

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	roleCache := redisrepo.NewRoleCache(redisClient, cfg.Redis.RoleCacheTTL)
	sessionRepo := redisrepo.NewSessionRepository(redisClient)

	// Initialize use cases
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	authUseCase := auth.NewAuthUseCase(tokens, roleRepo, roleCache, sessionRepo)

	var generator profile.DescriptionGenerator
	if geminiClient != nil {
		generator = geminiClient
	} else {
		generator = fallbackGenerator{}
	}
	profileUseCase := profile.NewProfileUseCase(profileRepo, publisher, generator, cfg.Directory.PageSize)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUseCase)
	profileHandler := handler.NewProfileHandler(profileUseCase)
	authMiddleware := middleware.NewAuthMiddleware(authUseCase)

	gin.SetMode(cfg.GinMode())
	router := http.NewRouter(
		http.RouterConfig{
			DevMode:        cfg.Server.IsDevelopment(),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			LogRequests:    cfg.Logging.LogsRequests(),
		},
		authHandler,
		profileHandler,
		authMiddleware,
	)

	ginRouter, err := router.Setup()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	c.Server = server.NewServer(&cfg.Server, ginRouter)
	return c, nil
}

type fallbackGenerator struct{}

func (fallbackGenerator) GenerateDescriptions(ctx context.Context, name, course string, interests []string) ([]string, bool) {
	return gemini.FallbackDescriptions(name, course, interests), false
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			fmt.Printf("Error closing event publisher: %v\n", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			fmt.Printf("Error closing Redis: %v\n", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
