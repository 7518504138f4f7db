// Package notify carries reservation notifications to the guest-facing
// collaborator.  Publishers implement service.Notifier; the RabbitMQ
// consumer records each delivery request on disk.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

const (
	DefaultQueue = "reservation.notifications"
	DefaultTopic = "reservation-notifications"
)

// Event is the broker payload.  It is the notification plus a unique id,
// so a consumer can discard redeliveries, and the publish time.
type Event struct {
	EventID string `json:"eventId"`
	model.ReservationNotification
	ConfirmedAt string `json:"confirmedAt"`
}

// NewEvent stamps n with a fresh id and the current time.
func NewEvent(n model.ReservationNotification) Event {
	return Event{
		EventID:                 uuid.NewString(),
		ReservationNotification: n,
		ConfirmedAt:             time.Now().UTC().Format(time.RFC3339),
	}
}

// Line renders the event as one human-readable log line.
func (e Event) Line() string {
	return fmt.Sprintf("[%s] Reservation confirmed | event_id=%s | reservation_id=%d | customer=%q | email=%s | date=%q | time=%s | guests=%d | table=%d\n",
		e.ConfirmedAt, e.EventID, e.ReservationID, e.CustomerName, e.CustomerEmail,
		e.ReservationDate, e.ReservationTime, e.NumberOfGuests, e.TableNumber)
}

// traceHeaders captures the span context of ctx for a message header.
func traceHeaders(ctx context.Context) propagation.MapCarrier {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier
}
