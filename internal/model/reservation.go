package model

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var (
	// ErrAlreadyCancelled is returned when cancelling a cancelled reservation.
	// Callers treat it as a successful no-op.
	ErrAlreadyCancelled = errors.New("reservation already cancelled")
	// ErrInvalidTransition is returned for status changes the lifecycle
	// does not allow, such as reviving a cancelled reservation.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidStatus is returned when parsing an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")
)

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Active reports whether the status holds a table.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo reports whether a reservation in s may move to next.
// cancelled is terminal; the two active states may swap freely.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	if s == StatusCancelled {
		return false
	}
	return next == StatusPending || next == StatusConfirmed || next == StatusCancelled
}

// Reservation is a booked table for one (date, slot).  The customer fields
// are filled from a join when the record is read back and are not stored on
// the reservation row itself.
//
// Fields:
//
//	ID          – reservations.id
//	CustomerID  – owning customer
//	Date, Time  – civil date and slot
//	Guests      – party size
//	TableNumber – assigned at creation, immutable
//	Status      – pending, confirmed or cancelled
type Reservation struct {
	ID            uint64    `json:"id"`
	CustomerID    uint64    `json:"customerId"`
	CustomerName  string    `json:"customerName,omitempty"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	Date          Date      `json:"date"`
	Time          Slot      `json:"time"`
	Guests        int       `json:"guests"`
	TableNumber   int       `json:"tableNumber"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Cancel moves the reservation to cancelled.
func (r *Reservation) Cancel() error {
	if r.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	r.Status = StatusCancelled
	return nil
}

// ReservationPatch is the administrative edit.  Nil fields are left as is.
// There is no table field; the assigned table never changes.
type ReservationPatch struct {
	Date   *Date   `json:"date,omitempty"`
	Time   *Slot   `json:"time,omitempty"`
	Guests *int    `json:"guests,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// Apply copies the non-nil fields of p onto r after checking the status
// transition.  A cancelled reservation is final: any patch that would
// change it fails with ErrInvalidTransition.  Slot and guest validation is
// the caller's job.
func (p ReservationPatch) Apply(r *Reservation) error {
	if r.Status == StatusCancelled && p.changes(*r) {
		return ErrInvalidTransition
	}
	if p.Status != nil {
		if !r.Status.CanTransitionTo(*p.Status) {
			return ErrInvalidTransition
		}
		r.Status = *p.Status
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Guests != nil {
		r.Guests = *p.Guests
	}
	return nil
}

func (p ReservationPatch) changes(r Reservation) bool {
	return (p.Status != nil && *p.Status != r.Status) ||
		(p.Date != nil && !p.Date.Equal(r.Date)) ||
		(p.Time != nil && *p.Time != r.Time) ||
		(p.Guests != nil && *p.Guests != r.Guests)
}

// ReservationFilter narrows a listing.  Zero values mean "any".
type ReservationFilter struct {
	Page          int
	PerPage       int
	Status        Status
	Date          *Date
	CustomerEmail string
}

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Normalize clamps paging values into range.
func (f ReservationFilter) Normalize() ReservationFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

// Offset is the row offset of the filter's page.
func (f ReservationFilter) Offset() int { return (f.Page - 1) * f.PerPage }

// ReservationPage is one page of a listing.
type ReservationPage struct {
	Reservations []Reservation `json:"reservations"`
	CurrentPage  int           `json:"currentPage"`
	Pages        int           `json:"pages"`
	Total        int           `json:"total"`
}

// NewReservationPage assembles a page, computing the page count from total.
func NewReservationPage(items []Reservation, f ReservationFilter, total int) ReservationPage {
	if items == nil {
		items = []Reservation{}
	}
	pages := 0
	if f.PerPage > 0 {
		pages = (total + f.PerPage - 1) / f.PerPage
	}
	return ReservationPage{Reservations: items, CurrentPage: f.Page, Pages: pages, Total: total}
}
