package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"user-profile-service/internal/domain"
	"user-profile-service/pkg/xerrors"
)

// DB is the subset of pgxpool.Pool the repository needs. Kept narrow so
// tests can substitute a mock pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProfileRepository is the profile store contract. Profiles live in
// user_profiles with preferences in a side table keyed by profile id.
type ProfileRepository interface {
	// GetByUserID finds a profile by the external identity subject.
	// Returns xerrors.ErrUserNotFound when absent.
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)

	// Upsert writes the profile row for p.ID, inserting or overwriting,
	// and replaces its preferences wholesale.
	Upsert(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error)

	// CreateIfAbsent inserts p unless a profile with the same user_id
	// already exists. The insert is a single conditional statement, so
	// concurrent first sightings of a subject converge on one row. The
	// second return reports whether a new row was created; when false the
	// stored profile is returned instead of p.
	CreateIfAbsent(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, bool, error)
}

type pgRepo struct {
	db DB
}

func NewProfileRepository(db DB) ProfileRepository {
	return &pgRepo{db: db}
}

const profileColumns = `id, user_id, COALESCE(email, ''), COALESCE(phone, ''),
		COALESCE(first_name, ''), COALESCE(last_name, ''),
		COALESCE(username, ''), COALESCE(role, '')`

func (r *pgRepo) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_profiles
		WHERE user_id = $1
	`

	p := new(domain.UserProfile)
	var pid int64
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&pid, &p.UserID, &p.Email, &p.Phone,
		&p.FirstName, &p.LastName, &p.Username, &p.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	p.ID = strconv.FormatInt(pid, 10)

	prefs, err := r.loadPreferences(ctx, pid)
	if err != nil {
		return nil, err
	}
	p.Preferences = prefs

	return p, nil
}

func (r *pgRepo) loadPreferences(ctx context.Context, profileID int64) (map[string]string, error) {
	query := `
		SELECT preference_key, preference_value
		FROM user_preferences
		WHERE user_profile_id = $1
	`

	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		prefs[k] = v
	}
	return prefs, rows.Err()
}

func (r *pgRepo) Upsert(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	pid, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid profile ID: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO user_profiles (id, user_id, email, phone, first_name, last_name, username, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			user_id    = EXCLUDED.user_id,
			email      = EXCLUDED.email,
			phone      = EXCLUDED.phone,
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			username   = EXCLUDED.username,
			role       = EXCLUDED.role,
			updated_at = NOW()
	`
	if _, err := tx.Exec(ctx, query, pid, p.UserID, p.Email, p.Phone,
		p.FirstName, p.LastName, p.Username, p.Role); err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			// user_id collided with a different row; external ids are unique.
			return nil, fmt.Errorf("duplicate external user id %s: %w", p.UserID, err)
		}
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	if err := replacePreferences(ctx, tx, pid, p.Preferences); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgRepo) CreateIfAbsent(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, bool, error) {
	pid, err := strconv.ParseInt(p.ID, 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("invalid profile ID: %w", err)
	}

	// Single conditional insert keyed on user_id: duplicate sightings of
	// the same subject never produce a second row.
	query := `
		INSERT INTO user_profiles (id, user_id, email, phone, first_name, last_name, username, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, pid, p.UserID, p.Email, p.Phone,
		p.FirstName, p.LastName, p.Username, p.Role)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		existing, err := r.GetByUserID(ctx, p.UserID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	if len(p.Preferences) > 0 {
		for k, v := range p.Preferences {
			if _, err := r.db.Exec(ctx, insertPreferenceSQL, pid, k, v); err != nil {
				return nil, false, fmt.Errorf("failed to insert preference: %w", err)
			}
		}
	}

	return p, true, nil
}

const insertPreferenceSQL = `
		INSERT INTO user_preferences (user_profile_id, preference_key, preference_value)
		VALUES ($1, $2, $3)
	`

// replacePreferences swaps the full preference set inside the caller's
// transaction. Updates are full replacements, never merges.
func replacePreferences(ctx context.Context, tx pgx.Tx, profileID int64, prefs map[string]string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM user_preferences WHERE user_profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	for k, v := range prefs {
		if _, err := tx.Exec(ctx, insertPreferenceSQL, profileID, k, v); err != nil {
			return fmt.Errorf("failed to insert preference: %w", err)
		}
	}
	return nil
}
