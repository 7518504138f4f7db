package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memstore"
)

func TestCancelTwiceReportsAlreadyCancelled(t *testing.T) {
	svc, _ := fixture(t, 2)
	res := mustBook(t, svc, booking("ann", "2025-12-24", "19:00", 2))
	other := mustBook(t, svc, booking("bob", "2025-12-24", "19:00", 4))
	before, err := svc.Ledger.GetReservation(context.Background(), other.Reservation.ID)
	require.NoError(t, err)
	req := model.CancelRequest{ReservationID: res.Reservation.ID}

	r, err := svc.Cancellation.Cancel(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, r.Status)

	r, err = svc.Cancellation.Cancel(context.Background(), req)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, res.Reservation.ID, r.ID)

	after, err := svc.Ledger.GetReservation(context.Background(), other.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCancelUnknownReservation(t *testing.T) {
	svc, _ := fixture(t, 1)
	_, err := svc.Cancellation.Cancel(context.Background(), model.CancelRequest{ReservationID: 404})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Cancellation.Cancel(context.Background(), model.CancelRequest{})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCancelEmailMustMatch(t *testing.T) {
	svc, _ := fixture(t, 1)
	res := mustBook(t, svc, booking("ann", "2025-12-24", "19:00", 2))

	_, err := svc.Cancellation.Cancel(context.Background(), model.CancelRequest{
		ReservationID: res.Reservation.ID, Email: "mallory@example.com",
	})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Cancellation.Cancel(context.Background(), model.CancelRequest{
		ReservationID: res.Reservation.ID, Email: "  ANN@example.com ",
	})
	require.NoError(t, err)
}

func TestCancelRequireOwner(t *testing.T) {
	svc := newServices(t, memstore.New(tables(2)...), Options{RequireCancelOwner: true})
	a := mustBook(t, svc, booking("ann", "2025-12-24", "19:00", 2))
	b := mustBook(t, svc, booking("bob", "2025-12-24", "19:00", 2))

	_, err := svc.Cancellation.Cancel(context.Background(), model.CancelRequest{ReservationID: a.Reservation.ID})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Cancellation.Cancel(context.Background(), model.CancelRequest{ReservationID: a.Reservation.ID, Admin: true})
	require.NoError(t, err)

	_, err = svc.Cancellation.Cancel(context.Background(), model.CancelRequest{ReservationID: b.Reservation.ID, Email: "bob@example.com"})
	require.NoError(t, err)
}
