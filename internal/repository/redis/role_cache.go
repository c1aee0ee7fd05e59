package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

type roleCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRoleCache(client *goredis.Client, ttl time.Duration) repository.RoleCache {
	return &roleCache{client: client, ttl: ttl}
}

func roleKey(accountID string) string {
	return fmt.Sprintf("role:%s", accountID)
}

func (c *roleCache) Get(ctx context.Context, accountID string) (domain.Role, bool, error) {
	val, err := c.client.Get(ctx, roleKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}

	switch domain.Role(val) {
	case domain.RoleAdmin, domain.RoleMember:
		return domain.Role(val), true, nil
	}
	// Anything else in the cache is treated as a miss.
	return "", false, nil
}

func (c *roleCache) Set(ctx context.Context, accountID string, role domain.Role) error {
	return c.client.Set(ctx, roleKey(accountID), string(role), c.ttl).Err()
}

func (c *roleCache) Invalidate(ctx context.Context, accountID string) error {
	return c.client.Del(ctx, roleKey(accountID)).Err()
}
