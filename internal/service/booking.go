package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// GuestLimits maps a booking surface to its largest accepted party.
type GuestLimits map[string]int

// DefaultGuestLimits are used when the restaurant file sets none.
var DefaultGuestLimits = GuestLimits{model.SurfaceWeb: 12, model.SurfaceQuick: 8}

// For returns the bound for surface, falling back to the web surface.
func (g GuestLimits) For(surface string) int {
	if n, ok := g[surface]; ok {
		return n
	}
	if n, ok := g[model.SurfaceWeb]; ok {
		return n
	}
	return DefaultGuestLimits[model.SurfaceWeb]
}

// Highest is the largest bound of any surface.
func (g GuestLimits) Highest() int {
	hi := 0
	for _, n := range g {
		hi = max(hi, n)
	}
	if hi == 0 {
		hi = DefaultGuestLimits[model.SurfaceWeb]
	}
	return hi
}

// BookingConfig tunes BookingService.
type BookingConfig struct {
	GuestLimits   GuestLimits
	Timeout       time.Duration
	NotifyTimeout time.Duration
}

// BookingService turns a booking form into a confirmed reservation on a
// free table.
type BookingService struct {
	store     repository.Store
	directory *Directory
	oracle    *Oracle
	ledger    *Ledger
	notifier  Notifier
	cfg       BookingConfig
	log       zerolog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	inflight  sync.WaitGroup
}

func NewBookingService(
	store repository.Store,
	directory *Directory,
	oracle *Oracle,
	ledger *Ledger,
	notifier Notifier,
	cfg BookingConfig,
	log zerolog.Logger,
	m *metrics.Metrics,
) *BookingService {
	if cfg.GuestLimits == nil {
		cfg.GuestLimits = DefaultGuestLimits
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 10 * time.Second
	}
	return &BookingService{
		store:     store,
		directory: directory,
		oracle:    oracle,
		ledger:    ledger,
		notifier:  notifier,
		cfg:       cfg,
		log:       log.With().Str("component", "booking").Logger(),
		metrics:   m,
		tracer:    otel.Tracer("github.com/iliyamo/restaurant-reservation/internal/service"),
	}
}

// Book validates req, then resolves the customer, picks the lowest free
// table and records the reservation inside one transaction.  Losing the
// table to a concurrent booking is retried once in a fresh transaction.
// The guest notification is sent after commit and never fails the booking.
func (s *BookingService) Book(ctx context.Context, req model.BookingRequest) (res model.BookingResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "booking.Book")
	defer func() {
		s.metrics.ObserveBooking(bookingResult(err), time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	date, slot, err := s.validate(req)
	if err != nil {
		return model.BookingResult{}, err
	}
	span.SetAttributes(
		attribute.String("reservation.date", date.String()),
		attribute.String("reservation.time", string(slot)),
		attribute.Int("reservation.guests", req.Guests),
	)

	var r model.Reservation
	for attempt := 1; ; attempt++ {
		r, err = s.attempt(ctx, req, date, slot)
		if !errors.Is(err, ErrTableNoLongerAvailable) {
			break
		}
		s.log.Info().Int("attempt", attempt).Str("date", date.String()).Str("time", string(slot)).
			Msg("table taken concurrently")
		if attempt == 2 {
			err = s.noAvailability(ctx, date, slot)
			break
		}
	}
	if err != nil {
		return model.BookingResult{}, err
	}

	span.SetAttributes(attribute.Int("reservation.table", r.TableNumber))
	s.log.Info().Uint64("reservation_id", r.ID).Int("table", r.TableNumber).
		Str("date", date.String()).Str("time", string(slot)).Msg("reservation confirmed")
	s.dispatch(ctx, r)
	return model.BookingResult{Reservation: r, TableNumber: r.TableNumber}, nil
}

func (s *BookingService) validate(req model.BookingRequest) (model.Date, model.Slot, error) {
	req.Customer.Name = strings.TrimSpace(req.Customer.Name)
	req.Customer.Email = model.NormalizeEmail(req.Customer.Email)
	if err := checkStruct(req); err != nil {
		return model.Date{}, "", err
	}
	date, err := s.oracle.checkDate(req.Date)
	if err != nil {
		return model.Date{}, "", err
	}
	slot, err := checkSlot(date, req.Time)
	if err != nil {
		return model.Date{}, "", err
	}
	if limit := s.cfg.GuestLimits.For(req.Surface); req.Guests < 1 || req.Guests > limit {
		return model.Date{}, "", invalid("guests", "must be between 1 and %d", limit)
	}
	return date, slot, nil
}

// attempt is one transaction: customer, table, reservation.
func (s *BookingService) attempt(ctx context.Context, req model.BookingRequest, date model.Date, slot model.Slot) (model.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var out model.Reservation
	err := s.store.WithTx(ctx, func(q repository.Queries) error {
		c, err := s.directory.resolve(ctx, q, req.Customer, req.NewsletterOptIn)
		if err != nil {
			return err
		}
		table, ok, err := s.oracle.assign(ctx, q, date, slot)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoAvailability
		}
		out, err = s.ledger.create(ctx, q, NewReservation{
			CustomerID:  c.ID,
			Date:        date,
			Time:        slot,
			Guests:      req.Guests,
			TableNumber: table,
		})
		return err
	})
	if errors.Is(err, ErrNoAvailability) {
		return model.Reservation{}, s.noAvailability(ctx, date, slot)
	}
	if err != nil {
		return model.Reservation{}, persistence("book", err)
	}
	return out, nil
}

// noAvailability builds the error with same-day alternatives.  Failing to
// compute alternatives does not hide the real outcome.
func (s *BookingService) noAvailability(ctx context.Context, date model.Date, slot model.Slot) error {
	alts, err := s.oracle.Alternatives(ctx, date, slot, 3)
	if err != nil {
		s.log.Warn().Err(err).Msg("alternatives lookup failed")
	}
	return &NoAvailabilityError{Date: date, Time: slot, Alternatives: alts}
}

// dispatch sends the notification on its own goroutine with a context that
// outlives the request.
func (s *BookingService) dispatch(ctx context.Context, r model.Reservation) {
	if s.notifier == nil {
		return
	}
	n := model.NotificationFor(r)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		if err := s.notifier.SendReservationNotification(ctx, n); err != nil {
			s.metrics.NotificationFailed()
			s.log.Error().Err(err).Uint64("reservation_id", n.ReservationID).
				Str("customer_email", n.CustomerEmail).Msg("reservation notification failed")
		}
	}()
}

// Wait blocks until every notification dispatched so far has finished.
func (s *BookingService) Wait() { s.inflight.Wait() }

func bookingResult(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.As(err, &ve):
		return metrics.ResultInvalid
	case errors.Is(err, ErrNoAvailability):
		return metrics.ResultNoAvailability
	}
	return metrics.ResultError
}
