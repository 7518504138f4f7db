package service

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// Options configures New.
type Options struct {
	Location           *time.Location
	Booking            BookingConfig
	Auth               AuthConfig
	RequireCancelOwner bool
	Notifier           Notifier
	Logger             zerolog.Logger
	Metrics            *metrics.Metrics
}

// Services is the full service layer over one store.
type Services struct {
	Directory    *Directory
	Oracle       *Oracle
	Ledger       *Ledger
	Booking      *BookingService
	Cancellation *CancellationService
	Auth         *AuthService
}

// New wires every service to store.
func New(store repository.Store, opts Options) *Services {
	if opts.Booking.GuestLimits == nil {
		opts.Booking.GuestLimits = DefaultGuestLimits
	}
	dir := NewDirectory(store, opts.Logger)
	oracle := NewOracle(store, opts.Location)
	ledger := NewLedger(store, opts.Booking.GuestLimits.Highest())
	return &Services{
		Directory:    dir,
		Oracle:       oracle,
		Ledger:       ledger,
		Booking:      NewBookingService(store, dir, oracle, ledger, opts.Notifier, opts.Booking, opts.Logger, opts.Metrics),
		Cancellation: NewCancellationService(store, opts.RequireCancelOwner, opts.Logger, opts.Metrics),
		Auth:         NewAuthService(store, opts.Auth, opts.Logger),
	}
}
