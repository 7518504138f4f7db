package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// Directory deduplicates guests by email.
type Directory struct {
	store repository.Store
	log   zerolog.Logger
}

func NewDirectory(store repository.Store, log zerolog.Logger) *Directory {
	return &Directory{store: store, log: log.With().Str("component", "directory").Logger()}
}

// ResolveCustomer returns the id of the customer with details.Email,
// creating the customer on first sight.  An existing customer is returned
// as stored; later bookings never rewrite the name or phone.
func (d *Directory) ResolveCustomer(ctx context.Context, details model.CustomerDetails, optIn bool) (uint64, error) {
	c, err := d.resolve(ctx, d.store, details, optIn)
	return c.ID, err
}

func (d *Directory) resolve(ctx context.Context, q repository.Queries, details model.CustomerDetails, optIn bool) (model.Customer, error) {
	in, err := customerFrom(details, optIn)
	if err != nil {
		return model.Customer{}, err
	}
	c, err := q.Customers().GetOrCreate(ctx, in)
	if err != nil {
		return model.Customer{}, persistence("resolve customer", err)
	}
	return c, nil
}

// UpsertCustomer creates the customer or overwrites name, phone and
// newsletter opt-in.  Last write wins.
func (d *Directory) UpsertCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	in, err := customerFrom(model.CustomerDetails{Name: c.Name, Email: c.Email, Phone: c.Phone}, c.NewsletterOptIn)
	if err != nil {
		return model.Customer{}, err
	}
	out, err := d.store.Customers().Upsert(ctx, in)
	if err != nil {
		return model.Customer{}, persistence("upsert customer", err)
	}
	d.log.Debug().Uint64("customer_id", out.ID).Bool("newsletter", out.NewsletterOptIn).Msg("customer upserted")
	return out, nil
}

func (d *Directory) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return model.Customer{}, invalid("email", "is required")
	}
	c, err := d.store.Customers().GetByEmail(ctx, email)
	if err != nil {
		return model.Customer{}, persistence("get customer", notFound("customer", err))
	}
	return c, nil
}

func customerFrom(details model.CustomerDetails, optIn bool) (model.Customer, error) {
	details.Name = strings.TrimSpace(details.Name)
	details.Email = model.NormalizeEmail(details.Email)
	details.Phone = strings.TrimSpace(details.Phone)
	if err := checkStruct(details); err != nil {
		return model.Customer{}, err
	}
	return model.Customer{
		Name:            details.Name,
		Email:           details.Email,
		Phone:           details.Phone,
		NewsletterOptIn: optIn,
	}, nil
}
