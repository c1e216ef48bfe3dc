package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores inventory in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("inventory: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// List returns all items ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, current_stock, target_stock, unit
		FROM inventory_items
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("inventory: list failed: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.CurrentStock, &item.TargetStock, &item.Unit); err != nil {
			return nil, fmt.Errorf("inventory: scan failed: %w", err)
		}
		out = append(out, item)
	}
	if out == nil {
		out = []Item{}
	}
	return out, rows.Err()
}

// GetByName finds an item by its exact name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Item, error) {
	var item Item
	err := r.db.QueryRow(ctx, `
		SELECT id, name, current_stock, target_stock, unit
		FROM inventory_items
		WHERE name = $1`, name).Scan(
		&item.ID, &item.Name, &item.CurrentStock, &item.TargetStock, &item.Unit,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("inventory: load failed: %w", err)
	}
	return &item, nil
}

// Save upserts an item by ID.
func (r *PostgresRepository) Save(ctx context.Context, item *Item) error {
	if item == nil || item.Name == "" {
		return ErrInvalidItem
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO inventory_items (id, name, current_stock, target_stock, unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
		    name=EXCLUDED.name, current_stock=EXCLUDED.current_stock,
		    target_stock=EXCLUDED.target_stock, unit=EXCLUDED.unit`,
		item.ID, item.Name, item.CurrentStock, item.TargetStock, item.Unit)
	if err != nil {
		return fmt.Errorf("inventory: save failed: %w", err)
	}
	return nil
}

// SetStock overwrites the current stock level for an item.
func (r *PostgresRepository) SetStock(ctx context.Context, id string, stock int) error {
	tag, err := r.db.Exec(ctx, `UPDATE inventory_items SET current_stock = $2 WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("inventory: set stock failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
