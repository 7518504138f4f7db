package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusPending))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusPending))

	assert.True(t, StatusPending.Active())
	assert.False(t, StatusCancelled.Active())

	_, err := ParseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestReservationCancelTwice(t *testing.T) {
	r := Reservation{Status: StatusConfirmed}
	require.NoError(t, r.Cancel())
	assert.Equal(t, StatusCancelled, r.Status)
	assert.ErrorIs(t, r.Cancel(), ErrAlreadyCancelled)
}

func TestPatchApply(t *testing.T) {
	date, _ := ParseDate("2025-12-26")
	slot := Slot("20:00")
	guests := 6
	r := Reservation{Time: "19:00", Guests: 2, TableNumber: 3, Status: StatusConfirmed}

	require.NoError(t, ReservationPatch{Date: &date, Time: &slot, Guests: &guests}.Apply(&r))
	assert.Equal(t, date, r.Date)
	assert.Equal(t, slot, r.Time)
	assert.Equal(t, 6, r.Guests)
	assert.Equal(t, 3, r.TableNumber)

	cancelled := StatusCancelled
	require.NoError(t, ReservationPatch{Status: &cancelled}.Apply(&r))
	confirmed := StatusConfirmed
	assert.ErrorIs(t, ReservationPatch{Status: &confirmed}.Apply(&r), ErrInvalidTransition)
	assert.Equal(t, StatusCancelled, r.Status)
}

func TestPatchCancelledIsFinal(t *testing.T) {
	date, _ := ParseDate("2025-12-24")
	later, _ := ParseDate("2025-12-26")
	slot := Slot("21:00")
	guests := 4
	cancelled := StatusCancelled
	r := Reservation{Date: date, Time: "19:00", Guests: 2, TableNumber: 1, Status: StatusCancelled}
	before := r

	for name, p := range map[string]ReservationPatch{
		"date":   {Date: &later},
		"time":   {Time: &slot},
		"guests": {Guests: &guests},
		"mixed":  {Status: &cancelled, Guests: &guests},
	} {
		t.Run(name, func(t *testing.T) {
			got := r
			assert.ErrorIs(t, p.Apply(&got), ErrInvalidTransition)
			assert.Equal(t, before, got)
		})
	}

	same := 2
	got := r
	require.NoError(t, ReservationPatch{Status: &cancelled, Guests: &same}.Apply(&got))
	assert.Equal(t, before, got)
}

func TestFilterAndPage(t *testing.T) {
	f := ReservationFilter{Page: 0, PerPage: 1000}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPerPage, f.PerPage)

	f = ReservationFilter{Page: 3}.Normalize()
	assert.Equal(t, DefaultPerPage, f.PerPage)
	assert.Equal(t, 20, f.Offset())

	p := NewReservationPage(nil, f, 21)
	assert.NotNil(t, p.Reservations)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 3, p.CurrentPage)
}
