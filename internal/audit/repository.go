package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filter controls which events to return.
type Filter struct {
	Action  Action  // optional
	Outcome Outcome // optional
	ActorID string  // optional
	Limit   int     // default 50, max 200
	Offset  int     // pagination offset
}

// ListResult contains the paginated event results.
type ListResult struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Repository defines the interface for audit event storage.
type Repository interface {
	Create(ctx context.Context, e *Event) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores events in the auth_events table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new audit event repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Name implements Sink.
func (r *SQLiteRepository) Name() string { return "sqlite" }

// Write implements Sink.
func (r *SQLiteRepository) Write(ctx context.Context, e Event) error {
	return r.Create(ctx, &e)
}

// Create inserts a new event. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = newEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_events (id, action, outcome, actor_id, username, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Action), string(e.Outcome),
		nullableString(e.ActorID), nullableString(e.Username), nullableString(e.Reason),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting auth event: %w", err)
	}

	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns events matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for audit queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	if filter.ActorID != "" {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, filter.ActorID)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM auth_events " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting auth events: %w", err)
	}

	query := "SELECT id, action, outcome, actor_id, username, reason, created_at FROM auth_events " +
		where + " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying auth events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var action, outcome, createdAt string
		var actorID, username, reason sql.NullString

		if err := rows.Scan(&e.ID, &action, &outcome, &actorID, &username, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning auth event: %w", err)
		}

		e.Action = Action(action)
		e.Outcome = Outcome(outcome)
		e.ActorID = actorID.String
		e.Username = username.String
		e.Reason = reason.String

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing auth event timestamp %q: %w", createdAt, err)
		}
		e.CreatedAt = t

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating auth events: %w", err)
	}

	return &ListResult{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func newEventID() string {
	return "evt-" + uuid.NewString()
}
