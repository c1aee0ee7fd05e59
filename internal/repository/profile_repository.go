package repository

import (
	"context"
	"time"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

type ProfileRepository interface {
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) error
}

type RoleRepository interface {
	GetRole(ctx context.Context, accountID string) (domain.Role, error)
}

// RoleCache memoizes resolved roles per account until the account signs out.
type RoleCache interface {
	Get(ctx context.Context, accountID string) (domain.Role, bool, error)
	Set(ctx context.Context, accountID string, role domain.Role) error
	Invalidate(ctx context.Context, accountID string) error
}

type SessionRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
