// Package metrics holds the prometheus collectors for the reservation
// service.  A nil *Metrics is valid and records nothing, which keeps tests
// and the CLI free of registry plumbing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Booking and cancellation outcome labels.
const (
	ResultOK             = "ok"
	ResultInvalid        = "invalid"
	ResultNoAvailability = "no_availability"
	ResultNotFound       = "not_found"
	ResultForbidden      = "forbidden"
	ResultAlready        = "already_cancelled"
	ResultError          = "error"
)

type Metrics struct {
	booked          *prometheus.CounterVec
	cancelled       *prometheus.CounterVec
	notifyFailed    prometheus.Counter
	bookingDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		booked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservations_booked_total",
			Help: "Booking attempts by outcome.",
		}, []string{"result"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservations_cancelled_total",
			Help: "Cancellation attempts by outcome.",
		}, []string{"result"}),
		notifyFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Reservation notifications that could not be handed to the transport.",
		}),
		bookingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "booking_duration_seconds",
			Help:    "Wall time of Book including retries.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.booked, m.cancelled, m.notifyFailed, m.bookingDuration)
	return m
}

func (m *Metrics) ObserveBooking(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.booked.WithLabelValues(result).Inc()
	m.bookingDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveCancel(result string) {
	if m == nil {
		return
	}
	m.cancelled.WithLabelValues(result).Inc()
}

func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notifyFailed.Inc()
}
