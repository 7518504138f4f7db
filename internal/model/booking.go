package model

// Entry surfaces that submit bookings.  Each has its own party-size bound.
const (
	SurfaceWeb   = "web"
	SurfaceQuick = "quick"
)

// BookingRequest is the booking form as submitted by any client.
type BookingRequest struct {
	Customer        CustomerDetails `json:"customer"`
	Date            string          `json:"date" validate:"required"`
	Time            string          `json:"time" validate:"required"`
	Guests          int             `json:"guests"`
	NewsletterOptIn bool            `json:"newsletterOptIn"`
	Surface         string          `json:"surface,omitempty"`
}

// BookingResult is returned by a successful booking.
type BookingResult struct {
	Reservation Reservation `json:"reservation"`
	TableNumber int         `json:"tableNumber"`
}

// CancelRequest identifies the reservation to cancel.  Email, when present,
// must match the owner.  Admin is set from the verified session, never from
// the request body.
type CancelRequest struct {
	ReservationID uint64 `json:"reservationId"`
	Email         string `json:"email,omitempty"`
	Admin         bool   `json:"-"`
}

// CancelResult is the cancellation response.
type CancelResult struct {
	Success          bool `json:"success"`
	AlreadyCancelled bool `json:"alreadyCancelled,omitempty"`
}

// ReservationNotification is handed to the notification collaborator after
// a booking commits.
type ReservationNotification struct {
	ReservationID   uint64 `json:"reservationId"`
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	ReservationDate string `json:"reservationDate"`
	ReservationTime string `json:"reservationTime"`
	NumberOfGuests  int    `json:"numberOfGuests"`
	TableNumber     int    `json:"tableNumber"`
}

// NotificationFor builds the notification payload for r.
func NotificationFor(r Reservation) ReservationNotification {
	return ReservationNotification{
		ReservationID:   r.ID,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		ReservationDate: r.Date.Long(),
		ReservationTime: string(r.Time),
		NumberOfGuests:  r.Guests,
		TableNumber:     r.TableNumber,
	}
}
