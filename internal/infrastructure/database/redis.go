package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the client used for the role cache and token
// revocation list.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetAddr(), err)
	}

	fmt.Printf("[Database] connected to redis %s (db %d)\n", cfg.GetAddr(), cfg.DB)
	return client, nil
}
