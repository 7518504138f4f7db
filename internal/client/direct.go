package client

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// Direct calls the service layer in process.  It acts with operator
// rights: listings cover every reservation and cancellations honour the
// Admin flag of the request.
type Direct struct {
	svc *service.Services
}

func NewDirect(svc *service.Services) *Direct {
	return &Direct{svc: svc}
}

func (d *Direct) Register(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	resp, err := d.svc.Auth.Register(ctx, creds)
	return resp, wrap(err)
}

func (d *Direct) Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	resp, err := d.svc.Auth.Login(ctx, creds)
	return resp, wrap(err)
}

func (d *Direct) GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error) {
	c, err := d.svc.Directory.GetCustomerByEmail(ctx, email)
	return c, wrap(err)
}

func (d *Direct) UpsertCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	out, err := d.svc.Directory.UpsertCustomer(ctx, c)
	return out, wrap(err)
}

func (d *Direct) CreateReservation(ctx context.Context, req model.BookingRequest) (model.BookingResult, error) {
	res, err := d.svc.Booking.Book(ctx, req)
	return res, wrap(err)
}

func (d *Direct) CancelReservation(ctx context.Context, req model.CancelRequest) (model.CancelResult, error) {
	_, err := d.svc.Cancellation.Cancel(ctx, req)
	if errors.Is(err, service.ErrAlreadyCancelled) {
		return model.CancelResult{Success: true, AlreadyCancelled: true}, nil
	}
	if err != nil {
		return model.CancelResult{}, wrap(err)
	}
	return model.CancelResult{Success: true}, nil
}

func (d *Direct) ListReservations(ctx context.Context, page int) (model.ReservationPage, error) {
	p, err := d.svc.Ledger.ListReservations(ctx, model.ReservationFilter{Page: page})
	return p, wrap(err)
}

// wrap converts a service error into an *Error with the status and text
// the HTTP layer would have produced.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	status, msg := service.ErrorStatus(err)
	e := &Error{Status: status, Message: msg}
	var na *service.NoAvailabilityError
	if errors.As(err, &na) {
		e.Alternatives = na.Alternatives
	}
	return e
}
