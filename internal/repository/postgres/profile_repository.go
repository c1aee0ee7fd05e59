package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/domain"
	"github.com/lisiobuddy/lisiobuddy-backend/internal/repository"
)

const profileColumns = `
	id, user_id, full_name, email, course, year, description, interests,
	status, group_number, last_active, avatar_url, created_at, updated_at`

type profileRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	FullName    sql.NullString `db:"full_name"`
	Email       sql.NullString `db:"email"`
	Course      sql.NullString `db:"course"`
	Year        sql.NullString `db:"year"`
	Description sql.NullString `db:"description"`
	Interests   pq.StringArray `db:"interests"`
	Status      sql.NullString `db:"status"`
	GroupNumber sql.NullInt64  `db:"group_number"`
	LastActive  sql.NullTime   `db:"last_active"`
	AvatarURL   sql.NullString `db:"avatar_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *profileRow) toDomain() *domain.Profile {
	profile := &domain.Profile{
		ID:          r.ID,
		UserID:      r.UserID,
		FullName:    r.FullName.String,
		Email:       r.Email.String,
		Course:      r.Course.String,
		Year:        r.Year.String,
		Description: r.Description.String,
		Interests:   []string(r.Interests),
		Status:      r.Status.String,
		AvatarURL:   r.AvatarURL.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if profile.Interests == nil {
		profile.Interests = []string{}
	}
	if r.GroupNumber.Valid {
		n := int(r.GroupNumber.Int64)
		profile.GroupNumber = &n
	}
	if r.LastActive.Valid {
		t := r.LastActive.Time
		profile.LastActive = &t
	}
	return profile
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	var rows []profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	profiles := make([]*domain.Profile, 0, len(rows))
	for i := range rows {
		profiles = append(profiles, rows[i].toDomain())
	}
	return profiles, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// GetByUserID returns the profile owned by an account.
func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var row profileRow
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// UpdateProfile replaces every editable field; fields are never patched.
func (r *profileRepository) UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) error {
	query := `
		UPDATE profiles
		SET full_name = $1, course = $2, year = $3, description = $4,
		    interests = $5, status = $6, group_number = $7, last_active = $8,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $9
	`
	interests := fields.Interests
	if interests == nil {
		interests = []string{}
	}
	result, err := r.db.ExecContext(
		ctx, query,
		fields.FullName, fields.Course, fields.Year, fields.Description,
		pq.Array(interests), string(fields.Status), fields.GroupNumber, fields.LastActive,
		id,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
