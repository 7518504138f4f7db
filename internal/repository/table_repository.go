package repository

import (
	"context"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// TableRepo reads and seeds the restaurant_tables inventory.
type TableRepo struct {
	db dbtx
}

// List returns the tables in service, ordered by number.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT table_number, capacity FROM restaurant_tables WHERE in_service=1 ORDER BY table_number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.Number, &t.Capacity); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Sync makes the stored inventory match tables.  Tables absent from the
// list are taken out of service rather than deleted because past
// reservations reference them.
func (r *TableRepo) Sync(ctx context.Context, tables []model.Table) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE restaurant_tables SET in_service=0"); err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO restaurant_tables (table_number, capacity, in_service) VALUES (?,?,1)
			 ON DUPLICATE KEY UPDATE capacity = VALUES(capacity), in_service = 1`,
			t.Number, t.Capacity); err != nil {
			return err
		}
	}
	return nil
}
