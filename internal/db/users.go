package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/career-portal/internal/types"
)

const userColumns = `id, legacy_id, name, email, phone_number, password_hash, role, roll_number,
	preferred_language, location, education_level, assessment_completed, last_login_at,
	created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var email, rollNumber *string
	err := row.Scan(&u.ID, &u.LegacyID, &u.Name, &email, &u.PhoneNumber, &u.PasswordHash, &u.Role,
		&rollNumber, &u.PreferredLanguage, &u.Location, &u.EducationLevel, &u.AssessmentCompleted,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Email = deref(email)
	u.RollNumber = deref(rollNumber)
	return &u, nil
}

func (db *DB) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	u, err := scanUser(db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user and returns the stored row. A taken phone number,
// email or roll number yields ErrDuplicate.
func (db *DB) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = types.UserRoleStudent
	}
	lang := in.PreferredLanguage
	if lang == "" {
		lang = "en"
	}

	u, err := scanUser(db.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, phone_number, password_hash, role, roll_number,
		                    preferred_language, location, education_level)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+userColumns,
		strings.TrimSpace(in.Name), nullable(strings.ToLower(strings.TrimSpace(in.Email))),
		strings.TrimSpace(in.PhoneNumber), in.PasswordHash, role, nullable(strings.TrimSpace(in.RollNumber)),
		lang, in.Location, in.EducationLevel,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user already exists", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUser retrieves a user by UUID. Returns (nil, nil) when absent.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return db.getUserWhere(ctx, "id = $1", id)
}

// GetUserByLegacyID retrieves a user by numeric legacy id.
func (db *DB) GetUserByLegacyID(ctx context.Context, legacyID int64) (*User, error) {
	return db.getUserWhere(ctx, "legacy_id = $1", legacyID)
}

// GetUserByIdentifier accepts a UUID or a numeric legacy id.
func (db *DB) GetUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if id, err := uuid.Parse(identifier); err == nil {
		return db.GetUser(ctx, id)
	}
	if legacyID, err := strconv.ParseInt(identifier, 10, 64); err == nil && legacyID > 0 {
		return db.GetUserByLegacyID(ctx, legacyID)
	}
	return nil, nil
}

// ResolveUser is GetUserByIdentifier returning the API view.
func (db *DB) ResolveUser(ctx context.Context, identifier string) (*types.User, error) {
	u, err := db.GetUserByIdentifier(ctx, identifier)
	if err != nil || u == nil {
		return nil, err
	}
	return u.Public(), nil
}

// FindUserForLogin matches identifier against phone number, email
// (case-insensitive), roll number and legacy id, in that order.
func (db *DB) FindUserForLogin(ctx context.Context, identifier string) (*User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}

	lookups := []struct {
		where string
		arg   any
	}{
		{"phone_number = $1", identifier},
		{"email = $1", strings.ToLower(identifier)},
		{"roll_number = $1", identifier},
	}
	if legacyID, err := strconv.ParseInt(identifier, 10, 64); err == nil && legacyID > 0 {
		lookups = append(lookups, struct {
			where string
			arg   any
		}{"legacy_id = $1", legacyID})
	}

	for _, l := range lookups {
		u, err := db.getUserWhere(ctx, l.where, l.arg)
		if err != nil || u != nil {
			return u, err
		}
	}
	return nil, nil
}

// ListUsers returns users newest first.
func (db *DB) ListUsers(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// TouchLastLogin stamps last_login_at with the current time.
func (db *DB) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SetAssessmentCompleted sets the user's assessment_completed flag.
func (db *DB) SetAssessmentCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	return setAssessmentCompleted(ctx, db.pool, id, completed)
}

func setAssessmentCompleted(ctx context.Context, q querier, id uuid.UUID, completed bool) error {
	result, err := q.Exec(ctx,
		`UPDATE users SET assessment_completed = $2, updated_at = NOW() WHERE id = $1`, id, completed)
	if err != nil {
		return fmt.Errorf("failed to update assessment flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// DeleteUser deletes a user and, by cascade, everything they own.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
