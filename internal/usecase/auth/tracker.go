package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository"
)

// Tracker is the session provider for one client. Sign-in updates the
// identity synchronously and resolves the role in the background; a role
// result is applied only while the session that requested it is current.
type Tracker struct {
	roles    repository.RoleRepository
	cache    repository.RoleCache
	sessions repository.SessionRepository

	emitMu sync.Mutex

	mu         sync.Mutex
	session    *Session
	role       domain.Role
	epoch      uint64
	resolved   chan struct{}
	resolveErr error
	listeners  map[int]func(domain.Viewer)
	nextID     int
}

func NewTracker(roles repository.RoleRepository, cache repository.RoleCache, sessions repository.SessionRepository) *Tracker {
	return &Tracker{
		roles:     roles,
		cache:     cache,
		sessions:  sessions,
		role:      domain.RoleAnonymous,
		listeners: make(map[int]func(domain.Viewer)),
	}
}

func (t *Tracker) CurrentSession() (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return Session{}, false
	}
	return *t.session, true
}

func (t *Tracker) Viewer() domain.Viewer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewerLocked()
}

func (t *Tracker) viewerLocked() domain.Viewer {
	if t.session == nil {
		return domain.AnonymousViewer()
	}
	return domain.Viewer{AccountID: t.session.AccountID, Role: t.role}
}

// OnSessionChange registers fn for every sign-in, role resolution and
// sign-out. Listeners must not sign in or out from the callback.
func (t *Tracker) OnSessionChange(fn func(domain.Viewer)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, id)
	}
}

// emit delivers viewer only if epoch is still current, so a late role result
// can never follow a sign-out.
func (t *Tracker) emit(epoch uint64, viewer domain.Viewer) {
	t.emitMu.Lock()
	defer t.emitMu.Unlock()

	t.mu.Lock()
	if t.epoch != epoch {
		t.mu.Unlock()
		return
	}
	fns := make([]func(domain.Viewer), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(viewer)
	}
}

func (t *Tracker) SignIn(ctx context.Context, s Session) {
	t.mu.Lock()
	t.epoch++
	epoch := t.epoch
	t.session = &s
	t.role = domain.RoleAnonymous
	t.resolveErr = nil
	done := make(chan struct{})
	t.resolved = done
	viewer := t.viewerLocked()
	t.mu.Unlock()

	t.emit(epoch, viewer)

	go t.resolveRole(ctx, epoch, s.AccountID, done)
}

func (t *Tracker) resolveRole(ctx context.Context, epoch uint64, accountID string, done chan struct{}) {
	defer close(done)

	role, err := t.lookupRole(ctx, accountID)

	t.mu.Lock()
	if t.epoch != epoch {
		t.mu.Unlock()
		return
	}
	if err != nil {
		t.resolveErr = err
		t.mu.Unlock()
		fmt.Printf("[Session] role resolution failed for %s: %v\n", accountID, err)
		return
	}
	t.role = role
	viewer := t.viewerLocked()
	t.mu.Unlock()

	t.emit(epoch, viewer)
}

func (t *Tracker) lookupRole(ctx context.Context, accountID string) (domain.Role, error) {
	if t.cache != nil {
		role, ok, err := t.cache.Get(ctx, accountID)
		if err != nil {
			fmt.Printf("[Session] role cache read failed: %v\n", err)
		} else if ok {
			return role, nil
		}
	}

	role, err := t.roles.GetRole(ctx, accountID)
	if errors.Is(err, domain.ErrRoleNotFound) {
		role, err = domain.RoleMember, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, accountID, role); err != nil {
			fmt.Printf("[Session] role cache write failed: %v\n", err)
		}
	}
	return role, nil
}

// AwaitRole blocks until the current session's role resolution finishes.
func (t *Tracker) AwaitRole(ctx context.Context) (domain.Viewer, error) {
	t.mu.Lock()
	done := t.resolved
	t.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return t.Viewer(), ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewerLocked(), t.resolveErr
}

// SignOut ends the session, revokes its token and drops the cached role.
func (t *Tracker) SignOut(ctx context.Context) error {
	t.mu.Lock()
	s := t.session
	if s == nil {
		t.mu.Unlock()
		return nil
	}
	t.epoch++
	epoch := t.epoch
	t.session = nil
	t.role = domain.RoleAnonymous
	t.resolveErr = nil
	t.resolved = nil
	t.mu.Unlock()

	t.emit(epoch, domain.AnonymousViewer())

	var errs []error
	if t.sessions != nil {
		if err := t.sessions.Revoke(ctx, s.TokenID, s.ExpiresAt); err != nil {
			errs = append(errs, fmt.Errorf("failed to revoke session: %w", err))
		}
	}
	if t.cache != nil {
		if err := t.cache.Invalidate(ctx, s.AccountID); err != nil {
			errs = append(errs, fmt.Errorf("failed to invalidate role cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
