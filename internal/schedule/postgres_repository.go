package schedule

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the subset of pgxpool.Pool used by the repository, kept small so
// tests can substitute pgxmock.
type db interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool db
}

// NewPostgresRepository creates a new PostgreSQL-backed repository
func NewPostgresRepository(pool db) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new event.
func (r *PostgresRepository) Create(ctx context.Context, event *Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO schedule_events (
			id, title, start_at, all_day, background_color, border_color,
			event_type, prescription_id, patient_id, patient_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Title, event.Start, event.AllDay,
		event.BackgroundColor, event.BorderColor, event.Type,
		event.PrescriptionID, event.PatientID, event.PatientName,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule event: %w", err)
	}
	return nil
}

// ListRange returns events whose start date falls inside the inclusive
// YYYY-MM-DD range. Empty bounds are open-ended.
func (r *PostgresRepository) ListRange(ctx context.Context, from, to string) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, start_at, all_day, background_color, border_color,
		       event_type, prescription_id, patient_id, patient_name
		FROM schedule_events
		WHERE (NULLIF($1, '') IS NULL OR start_at::date >= NULLIF($1, '')::date)
		  AND (NULLIF($2, '') IS NULL OR start_at::date <= NULLIF($2, '')::date)
		ORDER BY start_at ASC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		if err := rows.Scan(
			&event.ID, &event.Title, &event.Start, &event.AllDay,
			&event.BackgroundColor, &event.BorderColor, &event.Type,
			&event.PrescriptionID, &event.PatientID, &event.PatientName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
