package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// LogNotifier only logs.  It is the transport for development and for
// deployments without a broker.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "log-notifier").Logger()}
}

func (l *LogNotifier) SendReservationNotification(_ context.Context, n model.ReservationNotification) error {
	ev := NewEvent(n)
	l.log.Info().
		Str("event_id", ev.EventID).
		Uint64("reservation_id", n.ReservationID).
		Str("customer_email", n.CustomerEmail).
		Str("date", n.ReservationDate).
		Str("time", n.ReservationTime).
		Int("guests", n.NumberOfGuests).
		Int("table", n.TableNumber).
		Msg("reservation notification")
	return nil
}

func (l *LogNotifier) Close() error { return nil }
