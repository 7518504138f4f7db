package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

type customerRepo struct{ q querier }

const customerColumns = `id, name, email, COALESCE(phone, ''), newsletter_opt_in, created_at, updated_at`

func scanCustomer(row pgx.Row) (model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.NewsletterOptIn, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return model.Customer{}, notFound(err)
	}
	return c, nil
}

func (r *customerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	return scanCustomer(r.q.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE email=$1", model.NormalizeEmail(email)))
}

func (r *customerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	return scanCustomer(r.q.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id=$1", id))
}

// GetOrCreate relies on ON CONFLICT DO NOTHING, which returns no row when
// the email exists; the follow-up select then finds the winner.
func (r *customerRepo) GetOrCreate(ctx context.Context, c model.Customer) (model.Customer, error) {
	email := model.NormalizeEmail(c.Email)
	got, err := scanCustomer(r.q.QueryRow(ctx,
		`INSERT INTO customers (name, email, phone, newsletter_opt_in) VALUES ($1,$2,NULLIF($3,''),$4)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING `+customerColumns,
		c.Name, email, c.Phone, c.NewsletterOptIn))
	if errors.Is(err, repository.ErrNotFound) {
		return r.GetByEmail(ctx, email)
	}
	return got, err
}

func (r *customerRepo) Upsert(ctx context.Context, c model.Customer) (model.Customer, error) {
	return scanCustomer(r.q.QueryRow(ctx,
		`INSERT INTO customers (name, email, phone, newsletter_opt_in) VALUES ($1,$2,NULLIF($3,''),$4)
		 ON CONFLICT (email) DO UPDATE SET
		   name = EXCLUDED.name,
		   phone = COALESCE(EXCLUDED.phone, customers.phone),
		   newsletter_opt_in = EXCLUDED.newsletter_opt_in,
		   updated_at = now()
		 RETURNING `+customerColumns,
		c.Name, model.NormalizeEmail(c.Email), c.Phone, c.NewsletterOptIn))
}
