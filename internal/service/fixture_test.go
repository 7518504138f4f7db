package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memstore"
)

// today is pinned so that 2025-12-24 (a Wednesday) and 2025-12-28 (a
// Sunday) are in the future.
var today = time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	sent []model.ReservationNotification
	err  error
}

func (r *recorder) SendReservationNotification(_ context.Context, n model.ReservationNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recorder) all() []model.ReservationNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ReservationNotification(nil), r.sent...)
}

func tables(n int) []model.Table {
	out := make([]model.Table, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Table{Number: i, Capacity: 4})
	}
	return out
}

func newServices(t *testing.T, store repository.Store, opts Options) *Services {
	t.Helper()
	opts.Logger = zerolog.Nop()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Auth.JWTSecret == "" {
		opts.Auth = AuthConfig{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost}
	}
	svc := New(store, opts)
	svc.Oracle.SetClock(func() time.Time { return today })
	t.Cleanup(svc.Booking.Wait)
	return svc
}

// fixture returns services over an in-memory store with n tables.
func fixture(t *testing.T, n int) (*Services, *recorder) {
	t.Helper()
	rec := &recorder{}
	return newServices(t, memstore.New(tables(n)...), Options{Notifier: rec}), rec
}

func booking(name, date, slot string, guests int) model.BookingRequest {
	return model.BookingRequest{
		Customer: model.CustomerDetails{Name: name, Email: name + "@example.com"},
		Date:     date,
		Time:     slot,
		Guests:   guests,
	}
}

func mustBook(t *testing.T, svc *Services, req model.BookingRequest) model.BookingResult {
	t.Helper()
	res, err := svc.Booking.Book(context.Background(), req)
	require.NoError(t, err)
	return res
}

// flakyStore makes the first `fails` reservation inserts lose the race.
type flakyStore struct {
	repository.Store
	fails   atomic.Int32
	inserts atomic.Int32
}

func (s *flakyStore) WithTx(ctx context.Context, fn func(q repository.Queries) error) error {
	return s.Store.WithTx(ctx, func(q repository.Queries) error {
		return fn(flakyQueries{Queries: q, s: s})
	})
}

type flakyQueries struct {
	repository.Queries
	s *flakyStore
}

func (q flakyQueries) Reservations() repository.ReservationStore {
	return flakyReservations{ReservationStore: q.Queries.Reservations(), s: q.s}
}

type flakyReservations struct {
	repository.ReservationStore
	s *flakyStore
}

func (r flakyReservations) Insert(ctx context.Context, res *model.Reservation) error {
	r.s.inserts.Add(1)
	if r.s.fails.Add(-1) >= 0 {
		return repository.ErrTableTaken
	}
	return r.ReservationStore.Insert(ctx, res)
}

var errBroker = errors.New("broker down")
