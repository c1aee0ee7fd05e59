package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository"
)

type roleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) repository.RoleRepository {
	return &roleRepository{db: db}
}

// GetRole returns ErrRoleNotFound when the account has no role row.
func (r *roleRepository) GetRole(ctx context.Context, accountID string) (domain.Role, error) {
	var role string
	query := `SELECT role FROM user_roles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &role, query, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrRoleNotFound
		}
		return "", err
	}

	switch domain.Role(role) {
	case domain.RoleAdmin:
		return domain.RoleAdmin, nil
	default:
		return domain.RoleMember, nil
	}
}
