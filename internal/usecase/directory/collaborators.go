package directory

import (
	"context"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notifier receives user-visible, fire-and-forget notifications.
type Notifier interface {
	Notify(title, body string, severity Severity)
}

type ProfileStore interface {
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) error
}

// SessionProvider supplies the current viewer and pushes every auth
// transition to subscribers.
type SessionProvider interface {
	Viewer() domain.Viewer
	OnSessionChange(fn func(domain.Viewer)) (unsubscribe func())
}

// UpdateHook runs after a profile edit has been stored.
type UpdateHook func(ctx context.Context, profile *domain.Profile, viewer domain.Viewer)
