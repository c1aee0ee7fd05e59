package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
)

// Session is one signed-in account, identified by the token it presented.
type Session struct {
	AccountID string
	TokenID   string
	ExpiresAt time.Time
}

// TokenManager issues and verifies HS256 session tokens. Tokens carry the
// account only; roles are always resolved server-side.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate issues a signed token for the account.
func (m *TokenManager) Generate(accountID string) (string, Session, error) {
	now := m.now()
	session := Session{
		AccountID: accountID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}
	claims := jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   accountID,
		ID:        session.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, session, nil
}

// Parse verifies signature, issuer and lifetime and returns the session.
func (m *TokenManager) Parse(token string) (Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Session{}, errors.Join(domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return Session{}, domain.ErrInvalidToken
	}
	return Session{
		AccountID: claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
