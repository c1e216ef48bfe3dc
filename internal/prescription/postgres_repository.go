package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/haniwon/clinic-platform/internal/parser"
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

// Create stores a new prescription record. Herbs are stored as a JSONB
// column; their order of appearance is significant and must survive the
// round trip.
func (r *PostgresRepository) Create(ctx context.Context, p *Prescription) error {
	herbs, err := json.Marshal(p.Herbs)
	if err != nil {
		return fmt.Errorf("failed to encode herbs: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO prescriptions (
			id, patient_id, patient_name, herbs, water_volume, memo,
			duration_days, prescribed_date, follow_up_date, format, raw_text, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.PatientID, p.PatientName, herbs, p.WaterVolume, p.Memo,
		p.DurationDays, p.PrescribedDate, p.FollowUpDate, string(p.Format), p.RawText, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, patient_id, patient_name, herbs, water_volume, memo,
	       duration_days, prescribed_date, follow_up_date, format, raw_text, created_at
	FROM prescriptions`

// GetByID retrieves a prescription by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Prescription, error) {
	row := r.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id)

	p, err := scanPrescription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return p, nil
}

// List returns all prescriptions ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]Prescription, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	defer rows.Close()
	return collectPrescriptions(rows)
}

// ListByPatient returns a patient's prescriptions ordered by prescribed date.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]Prescription, error) {
	rows, err := r.pool.Query(ctx,
		selectColumns+` WHERE patient_id = $1 ORDER BY prescribed_date ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	defer rows.Close()
	return collectPrescriptions(rows)
}

func collectPrescriptions(rows pgx.Rows) ([]Prescription, error) {
	var out []Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prescription: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var herbs []byte
	var format string
	if err := row.Scan(
		&p.ID, &p.PatientID, &p.PatientName, &herbs, &p.WaterVolume, &p.Memo,
		&p.DurationDays, &p.PrescribedDate, &p.FollowUpDate, &format, &p.RawText, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(herbs, &p.Herbs); err != nil {
		return nil, fmt.Errorf("failed to decode herbs: %w", err)
	}
	p.Format = parser.Format(format)
	return &p, nil
}
