package service

import (
	"context"
	"errors"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// NewReservation is the input to CreateReservation.
type NewReservation struct {
	CustomerID  uint64
	Date        model.Date
	Time        model.Slot
	Guests      int
	TableNumber int
}

// Ledger records reservations.  Table assignment is not its concern: it
// trusts the table it is given and lets the storage constraint reject a
// double booking.
type Ledger struct {
	store     repository.Store
	maxGuests int
}

// NewLedger returns a Ledger.  maxGuests bounds administrative edits.
func NewLedger(store repository.Store, maxGuests int) *Ledger {
	return &Ledger{store: store, maxGuests: maxGuests}
}

// CreateReservation stores a confirmed reservation.  ErrTableNoLongerAvailable
// means another reservation took the table first.
func (l *Ledger) CreateReservation(ctx context.Context, in NewReservation) (model.Reservation, error) {
	return l.create(ctx, l.store, in)
}

func (l *Ledger) create(ctx context.Context, q repository.Queries, in NewReservation) (model.Reservation, error) {
	r := model.Reservation{
		CustomerID:  in.CustomerID,
		Date:        in.Date,
		Time:        in.Time,
		Guests:      in.Guests,
		TableNumber: in.TableNumber,
		Status:      model.StatusConfirmed,
	}
	if err := q.Reservations().Insert(ctx, &r); err != nil {
		if errors.Is(err, repository.ErrTableTaken) {
			return model.Reservation{}, ErrTableNoLongerAvailable
		}
		return model.Reservation{}, persistence("insert reservation", err)
	}
	return r, nil
}

// UpdateReservation applies an administrative edit.  The table stays as
// assigned and availability is not re-checked, so a move onto a held
// (date, slot, table) fails with ErrTableNoLongerAvailable.
func (l *Ledger) UpdateReservation(ctx context.Context, id uint64, patch model.ReservationPatch) (model.Reservation, error) {
	if patch.Date != nil && patch.Date.IsZero() {
		return model.Reservation{}, invalid("date", "must be a date in YYYY-MM-DD form")
	}
	if patch.Time != nil {
		if _, err := model.ParseSlot(string(*patch.Time)); err != nil {
			return model.Reservation{}, invalid("time", "must be a half-hour slot between 17:00 and 23:00")
		}
	}
	if patch.Status != nil {
		if _, err := model.ParseStatus(string(*patch.Status)); err != nil {
			return model.Reservation{}, invalid("status", "must be pending, confirmed or cancelled")
		}
	}
	var out model.Reservation
	err := l.store.WithTx(ctx, func(q repository.Queries) error {
		r, err := q.Reservations().GetForUpdate(ctx, id)
		if err != nil {
			return notFound("reservation", err)
		}
		if err := patch.Apply(&r); err != nil {
			return err
		}
		if !r.Time.AllowedOn(r.Date.Weekday()) {
			return invalid("time", "%s is not available on %s", r.Time, r.Date.Weekday())
		}
		if r.Guests < 1 || (l.maxGuests > 0 && r.Guests > l.maxGuests) {
			return invalid("guests", "must be between 1 and %d", l.maxGuests)
		}
		if err := q.Reservations().Update(ctx, &r); err != nil {
			if errors.Is(err, repository.ErrTableTaken) {
				return ErrTableNoLongerAvailable
			}
			return notFound("reservation", err)
		}
		out = r
		return nil
	})
	if err != nil {
		return model.Reservation{}, persistence("update reservation", err)
	}
	return out, nil
}

func (l *Ledger) GetReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	r, err := l.store.Reservations().GetByID(ctx, id)
	if err != nil {
		return model.Reservation{}, persistence("get reservation", notFound("reservation", err))
	}
	return r, nil
}

// ListReservations returns one page, newest date and slot first.
func (l *Ledger) ListReservations(ctx context.Context, f model.ReservationFilter) (model.ReservationPage, error) {
	f = f.Normalize()
	f.CustomerEmail = model.NormalizeEmail(f.CustomerEmail)
	items, total, err := l.store.Reservations().List(ctx, f)
	if err != nil {
		return model.ReservationPage{}, persistence("list reservations", err)
	}
	return model.NewReservationPage(items, f, total), nil
}
