package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

type sessionRepository struct {
	client *goredis.Client
	now    func() time.Time
}

func NewSessionRepository(client *goredis.Client) repository.SessionRepository {
	return &sessionRepository{client: client, now: time.Now}
}

func revokedKey(tokenID string) string {
	return fmt.Sprintf("session:revoked:%s", tokenID)
}

// Revoke marks a token as signed out until it would have expired anyway.
func (r *sessionRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (r *sessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
