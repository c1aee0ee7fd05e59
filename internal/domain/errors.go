package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidToken    = errors.New("invalid token")
	ErrSessionRevoked  = errors.New("session revoked")
	ErrNoEditOpen      = errors.New("no edit form open")
	ErrInvalidGroup    = errors.New("group number must be positive")
	ErrViewClosed      = errors.New("directory view closed")
)
