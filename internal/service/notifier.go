package service

import (
	"context"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Notifier hands a confirmed booking to whatever sends the guest their
// confirmation.  Implementations live in package notify.
type Notifier interface {
	SendReservationNotification(ctx context.Context, n model.ReservationNotification) error
}
