package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestUpdateReservationKeepsTable(t *testing.T) {
	svc, _ := fixture(t, 2)
	res := mustBook(t, svc, booking("ann", "2025-12-24", "19:00", 2))

	r, err := svc.Ledger.UpdateReservation(context.Background(), res.Reservation.ID, model.ReservationPatch{
		Time:   ptr(model.Slot("20:30")),
		Guests: ptr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, model.Slot("20:30"), r.Time)
	assert.Equal(t, 5, r.Guests)
	assert.Equal(t, res.TableNumber, r.TableNumber)
}

func TestUpdateReservationOntoHeldTable(t *testing.T) {
	svc, _ := fixture(t, 1)
	mustBook(t, svc, booking("ann", "2025-12-24", "19:00", 2))
	other := mustBook(t, svc, booking("bob", "2025-12-24", "20:00", 2))

	_, err := svc.Ledger.UpdateReservation(context.Background(), other.Reservation.ID, model.ReservationPatch{
		Time: ptr(model.Slot("19:00")),
	})
	require.ErrorIs(t, err, ErrTableNoLongerAvailable)

	r, err := svc.Ledger.GetReservation(context.Background(), other.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Slot("20:00"), r.Time)
}

func TestUpdateReservationRejects(t *testing.T) {
	svc, _ := fixture(t, 1)
	res := mustBook(t, svc, booking("ann", "2025-12-24", "19:00", 2))
	id := res.Reservation.ID
	sunday, _ := model.ParseDate("2025-12-28")

	cases := map[string]model.ReservationPatch{
		"unknown slot":   {Time: ptr(model.Slot("19:15"))},
		"unknown status": {Status: ptr(model.Status("done"))},
		"sunday late":    {Date: &sunday, Time: ptr(model.Slot("22:30"))},
		"no guests":      {Guests: ptr(0)},
		"too many":       {Guests: ptr(13)},
		"empty date":     {Date: &model.Date{}},
	}
	for name, patch := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Ledger.UpdateReservation(context.Background(), id, patch)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}

	_, err := svc.Ledger.UpdateReservation(context.Background(), id, model.ReservationPatch{Status: ptr(model.StatusCancelled)})
	require.NoError(t, err)
	_, err = svc.Ledger.UpdateReservation(context.Background(), id, model.ReservationPatch{Status: ptr(model.StatusConfirmed)})
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Ledger.UpdateReservation(context.Background(), id, model.ReservationPatch{Guests: ptr(4)})
	require.ErrorIs(t, err, ErrInvalidTransition)
	got, err := svc.Ledger.GetReservation(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Guests)
	assert.False(t, got.Date.IsZero())

	_, err = svc.Ledger.UpdateReservation(context.Background(), 999, model.ReservationPatch{Guests: ptr(2)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListReservationsPages(t *testing.T) {
	svc, _ := fixture(t, 3)
	for _, slot := range []string{"17:00", "18:00", "19:00"} {
		for _, name := range []string{"ann", "bob", "cat"} {
			mustBook(t, svc, booking(name, "2025-12-24", slot, 2))
		}
	}
	ctx := context.Background()

	page, err := svc.Ledger.ListReservations(ctx, model.ReservationFilter{Page: 1, PerPage: 4})
	require.NoError(t, err)
	assert.Equal(t, 9, page.Total)
	assert.Equal(t, 3, page.Pages)
	require.Len(t, page.Reservations, 4)
	assert.Equal(t, model.Slot("19:00"), page.Reservations[0].Time)

	mine, err := svc.Ledger.ListReservations(ctx, model.ReservationFilter{CustomerEmail: "BOB@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Total)
	for _, r := range mine.Reservations {
		assert.Equal(t, "bob@example.com", r.CustomerEmail)
	}
}
