package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// CustomerRepo stores guests in the customers table.  Emails are stored in
// normalized form and carry a unique index, which is what makes lookups
// case-insensitive.
type CustomerRepo struct {
	db dbtx
}

const customerColumns = `id, name, email, phone, newsletter_opt_in, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	var phone sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.NewsletterOptIn, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Customer{}, notFound(err)
	}
	c.Phone = phone.String
	return c, nil
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE email=? LIMIT 1",
		model.NormalizeEmail(email)))
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	return scanCustomer(r.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id=? LIMIT 1", id))
}

// GetOrCreate inserts the customer unless the email is already known.  The
// LAST_INSERT_ID(id) assignment makes a duplicate insert report the
// existing row's id without modifying it, so two concurrent first bookings
// by the same guest resolve to one row.
func (r *CustomerRepo) GetOrCreate(ctx context.Context, c model.Customer) (model.Customer, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, email, phone, newsletter_opt_in) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`,
		c.Name, model.NormalizeEmail(c.Email), nullString(c.Phone), c.NewsletterOptIn)
	if err != nil {
		return model.Customer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Customer{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Upsert creates the customer or overwrites the mutable fields of the
// existing row.  An empty phone keeps the stored one.
func (r *CustomerRepo) Upsert(ctx context.Context, c model.Customer) (model.Customer, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (name, email, phone, newsletter_opt_in) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		   id = LAST_INSERT_ID(id),
		   name = VALUES(name),
		   phone = COALESCE(VALUES(phone), phone),
		   newsletter_opt_in = VALUES(newsletter_opt_in)`,
		c.Name, model.NormalizeEmail(c.Email), nullString(c.Phone), c.NewsletterOptIn)
	if err != nil {
		return model.Customer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Customer{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
