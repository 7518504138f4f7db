package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

type tableRepo struct{ q querier }

func (r *tableRepo) List(ctx context.Context) ([]model.Table, error) {
	rows, err := r.q.Query(ctx,
		"SELECT table_number, capacity FROM restaurant_tables WHERE in_service ORDER BY table_number")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Table, error) {
		var t model.Table
		err := row.Scan(&t.Number, &t.Capacity)
		return t, err
	})
}

func (r *tableRepo) Sync(ctx context.Context, tables []model.Table) error {
	if _, err := r.q.Exec(ctx, "UPDATE restaurant_tables SET in_service = FALSE"); err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO restaurant_tables (table_number, capacity, in_service) VALUES ($1,$2,TRUE)
			 ON CONFLICT (table_number) DO UPDATE SET capacity = EXCLUDED.capacity, in_service = TRUE`,
			t.Number, t.Capacity); err != nil {
			return err
		}
	}
	return nil
}
