package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRoleCacheLifecycle(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRoleCache(client, time.Hour)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "acc-1"); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "acc-1", domain.RoleAdmin); err != nil {
		t.Fatalf("set: %v", err)
	}
	role, ok, err := cache.Get(ctx, "acc-1")
	if err != nil || !ok || role != domain.RoleAdmin {
		t.Fatalf("expected cached admin, got %s ok=%v err=%v", role, ok, err)
	}
	if ttl := mr.TTL("role:acc-1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}

	if err := cache.Invalidate(ctx, "acc-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "acc-1"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestRoleCacheIgnoresUnknownValues(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRoleCache(client, time.Hour)
	mr.Set("role:acc-2", "superuser")

	if _, ok, err := cache.Get(context.Background(), "acc-2"); err != nil || ok {
		t.Fatalf("expected unknown role to be a miss, got ok=%v err=%v", ok, err)
	}
}

func TestSessionRevocation(t *testing.T) {
	mr, client := newTestClient(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	repo := &sessionRepository{client: client, now: func() time.Time { return now }}
	ctx := context.Background()

	if err := repo.Revoke(ctx, "jti-1", now.Add(30*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := repo.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected jti-1 revoked, got %v (%v)", revoked, err)
	}
	if ttl := mr.TTL("session:revoked:jti-1"); ttl != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", ttl)
	}

	if err := repo.Revoke(ctx, "jti-2", now.Add(-time.Minute)); err != nil {
		t.Fatalf("revoke expired: %v", err)
	}
	if revoked, _ := repo.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatalf("expired token should not be stored")
	}
}
