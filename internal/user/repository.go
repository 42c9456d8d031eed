package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/gray-logic-authcore/internal/acl"
)

// Repository defines the interface for user account persistence.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	GetByUsername(ctx context.Context, username string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed user repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = "SELECT id, name, username, email, password_hash, roles, disabled, created_at, updated_at FROM users"

// Create inserts a new user account. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = "usr-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Truncate(time.Second)
	rec.CreatedAt = now
	rec.UpdatedAt = now
	ts := now.Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, username, email, password_hash, roles, disabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Username, nullString(rec.Email),
		rec.PasswordHash, acl.JoinRoles(rec.Roles), boolToInt(rec.Disabled),
		ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	return scanRecord(r.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
}

// GetByUsername retrieves a user by their username.
func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*Record, error) {
	return scanRecord(r.db.QueryRowContext(ctx, selectColumns+" WHERE username = ?", username))
}

// List returns all users ordered by creation date.
func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+" ORDER BY created_at ASC, username ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return records, nil
}

// Update writes the mutable fields (name, email, password hash, roles, disabled).
func (r *SQLiteRepository) Update(ctx context.Context, rec *Record) error {
	now := time.Now().UTC().Truncate(time.Second)
	rec.UpdatedAt = now

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password_hash = ?, roles = ?, disabled = ?, updated_at = ? WHERE id = ?`,
		rec.Name, nullString(rec.Email), rec.PasswordHash, acl.JoinRoles(rec.Roles),
		boolToInt(rec.Disabled), now.Format(time.RFC3339), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user account by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of user accounts.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a user from any scanner (Row or Rows).
func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var email sql.NullString
	var roles string
	var disabled int
	var createdAt, updatedAt string

	err := s.Scan(&rec.ID, &rec.Name, &rec.Username, &email,
		&rec.PasswordHash, &roles, &disabled, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	rec.Roles = acl.ParseRoles(roles)
	rec.Disabled = disabled != 0
	if email.Valid {
		rec.Email = email.String
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
