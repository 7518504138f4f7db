package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// CancellationService cancels reservations.  Cancelling frees the table
// for the slot at once because only active rows count against it.
type CancellationService struct {
	store        repository.Store
	requireOwner bool
	log          zerolog.Logger
	metrics      *metrics.Metrics
}

// NewCancellationService returns the service.  With requireOwner set, a
// caller must be an admin or present the owner's email; otherwise anyone
// holding the reservation id may cancel.
func NewCancellationService(store repository.Store, requireOwner bool, log zerolog.Logger, m *metrics.Metrics) *CancellationService {
	return &CancellationService{
		store:        store,
		requireOwner: requireOwner,
		log:          log.With().Str("component", "cancellation").Logger(),
		metrics:      m,
	}
}

// Cancel marks the reservation cancelled.  ErrAlreadyCancelled is returned
// with the stored reservation when there was nothing to do.
func (s *CancellationService) Cancel(ctx context.Context, req model.CancelRequest) (out model.Reservation, err error) {
	defer func() { s.metrics.ObserveCancel(cancelResult(err)) }()

	if req.ReservationID == 0 {
		return model.Reservation{}, invalid("reservationId", "is required")
	}
	email := model.NormalizeEmail(req.Email)
	err = s.store.WithTx(ctx, func(q repository.Queries) error {
		r, err := q.Reservations().GetForUpdate(ctx, req.ReservationID)
		if err != nil {
			return notFound("reservation", err)
		}
		out = r
		if !req.Admin {
			if email != "" && email != model.NormalizeEmail(r.CustomerEmail) {
				return ErrForbidden
			}
			if s.requireOwner && email == "" {
				return ErrForbidden
			}
		}
		if err := r.Cancel(); err != nil {
			return err
		}
		if err := q.Reservations().Update(ctx, &r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if errors.Is(err, ErrAlreadyCancelled) {
		return out, err
	}
	if err != nil {
		return model.Reservation{}, persistence("cancel reservation", err)
	}
	s.log.Info().Uint64("reservation_id", out.ID).Bool("admin", req.Admin).Msg("reservation cancelled")
	return out, nil
}

func cancelResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrAlreadyCancelled):
		return metrics.ResultAlready
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, ErrForbidden):
		return metrics.ResultForbidden
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return metrics.ResultInvalid
	}
	return metrics.ResultError
}
