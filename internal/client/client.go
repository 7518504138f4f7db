// Package client is the single entry point callers use to talk to the
// reservation backend.  Two adapters satisfy Backend: REST speaks to the
// /v1 HTTP API of a running server and Direct calls the service layer in
// process.  Callers never learn which one they hold.
package client

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

const (
	BackendREST   = "rest"
	BackendDirect = "direct"
)

// Backend is the facade over the reservation operations.
type Backend interface {
	Register(ctx context.Context, creds model.Credentials) (model.AuthResponse, error)
	Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error)
	GetCustomerByEmail(ctx context.Context, email string) (model.Customer, error)
	UpsertCustomer(ctx context.Context, c model.Customer) (model.Customer, error)
	CreateReservation(ctx context.Context, req model.BookingRequest) (model.BookingResult, error)
	CancelReservation(ctx context.Context, req model.CancelRequest) (model.CancelResult, error)
	ListReservations(ctx context.Context, page int) (model.ReservationPage, error)
}

// Error is the failure type of both adapters.  Status follows HTTP
// semantics and Message is the text a server would put in {"error": ...}.
// Alternatives is filled for a no-availability conflict.
type Error struct {
	Status       int          `json:"-"`
	Message      string       `json:"error"`
	Alternatives []model.Slot `json:"alternatives,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("%d: %s", e.Status, e.Message) }

// Config selects and configures an adapter.
type Config struct {
	// Backend is "rest" or "direct"; empty means rest.
	Backend string
	// BaseURL and Token configure REST.  Token is a bearer access token;
	// listing every reservation requires an ADMIN one.
	BaseURL string
	Token   string
	// Services backs Direct.
	Services *service.Services
}

// New returns the adapter named by cfg.Backend.
func New(cfg Config) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendREST:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("client: rest backend needs a base URL")
		}
		return NewREST(cfg.BaseURL, cfg.Token, nil), nil
	case BackendDirect:
		if cfg.Services == nil {
			return nil, fmt.Errorf("client: direct backend needs services")
		}
		return NewDirect(cfg.Services), nil
	default:
		return nil, fmt.Errorf("client: unknown backend %q", cfg.Backend)
	}
}

// All walks every page of b's reservation listing from the first page.
func All(ctx context.Context, b Backend) iter.Seq2[model.Reservation, error] {
	return func(yield func(model.Reservation, error) bool) {
		for page := 1; ; page++ {
			p, err := b.ListReservations(ctx, page)
			if err != nil {
				yield(model.Reservation{}, err)
				return
			}
			for _, r := range p.Reservations {
				if !yield(r, nil) {
					return
				}
			}
			if page >= p.Pages {
				return
			}
		}
	}
}
