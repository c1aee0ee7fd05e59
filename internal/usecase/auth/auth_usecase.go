package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository"
)

type AuthUseCase struct {
	tokens   *TokenManager
	roles    repository.RoleRepository
	cache    repository.RoleCache
	sessions repository.SessionRepository
}

func NewAuthUseCase(
	tokens *TokenManager,
	roles repository.RoleRepository,
	cache repository.RoleCache,
	sessions repository.SessionRepository,
) *AuthUseCase {
	return &AuthUseCase{
		tokens:   tokens,
		roles:    roles,
		cache:    cache,
		sessions: sessions,
	}
}

// Authenticate verifies a bearer token and rejects signed-out sessions.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (Session, error) {
	session, err := uc.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}

	if uc.sessions != nil {
		revoked, err := uc.sessions.IsRevoked(ctx, session.TokenID)
		if err != nil {
			return Session{}, fmt.Errorf("failed to check session: %w", err)
		}
		if revoked {
			return Session{}, domain.ErrSessionRevoked
		}
	}
	return session, nil
}

// Begin authenticates the token and returns a tracker already signed in to
// it. Role resolution is still running when Begin returns.
func (uc *AuthUseCase) Begin(ctx context.Context, token string) (*Tracker, error) {
	session, err := uc.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	tracker := uc.NewTracker()
	tracker.SignIn(ctx, session)
	return tracker, nil
}

func (uc *AuthUseCase) NewTracker() *Tracker {
	return NewTracker(uc.roles, uc.cache, uc.sessions)
}

// IssueDevToken mints a token for a local account id. Only the account is
// encoded; the role still comes from the role store.
func (uc *AuthUseCase) IssueDevToken(accountID string) (string, Session, error) {
	if _, err := uuid.Parse(accountID); err != nil {
		return "", Session{}, fmt.Errorf("account id must be a uuid: %w", err)
	}
	return uc.tokens.Generate(accountID)
}
