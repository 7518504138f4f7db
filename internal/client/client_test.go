package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memstore"
	"github.com/iliyamo/restaurant-reservation/internal/router"
	"github.com/iliyamo/restaurant-reservation/internal/service"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

const secret = "client-test-secret"

func newServices(t *testing.T) *service.Services {
	t.Helper()
	store := memstore.New(model.Table{Number: 1, Capacity: 2}, model.Table{Number: 2, Capacity: 4})
	svc := service.New(store, service.Options{
		Location: time.UTC,
		Auth:     service.AuthConfig{JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost},
		Logger:   zerolog.Nop(),
	})
	svc.Oracle.SetClock(func() time.Time { return time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC) })
	t.Cleanup(svc.Booking.Wait)
	return svc
}

func newRESTBackend(t *testing.T) Backend {
	t.Helper()
	svc := newServices(t)
	e := echo.New()
	guard := router.Guard{Secret: secret}
	res := handler.NewReservationHandler(svc)
	cust := handler.NewCustomerHandler(svc)
	router.RegisterAuth(e, handler.NewAuthHandler(svc.Auth, nil), guard)
	router.RegisterPublic(e, res, cust, guard, nil, nil)
	router.RegisterCustomer(e, res, cust, guard)
	router.RegisterAdmin(e, handler.NewAdminReservationHandler(svc), guard)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	tok, err := utils.NewAccessToken(secret, 1, "ops@example.com", model.RoleAdmin, 15)
	require.NoError(t, err)
	b, err := New(Config{Backend: BackendREST, BaseURL: srv.URL, Token: tok.Token})
	require.NoError(t, err)
	return b
}

func newDirectBackend(t *testing.T) Backend {
	t.Helper()
	b, err := New(Config{Backend: BackendDirect, Services: newServices(t)})
	require.NoError(t, err)
	return b
}

// outcome is the comparable part of one facade call.
type outcome struct {
	Table        int
	Status       int
	Message      string
	Alternatives []model.Slot
	Cancel       model.CancelResult
	Total        int
	Name         string
}

func failure(err error) outcome {
	var ce *Error
	if errors.As(err, &ce) {
		return outcome{Status: ce.Status, Message: ce.Message, Alternatives: ce.Alternatives}
	}
	return outcome{Status: -1, Message: err.Error()}
}

func book(name string) model.BookingRequest {
	return model.BookingRequest{
		Customer: model.CustomerDetails{Name: name, Email: name + "@example.com"},
		Date:     "2025-12-24",
		Time:     "19:00",
		Guests:   2,
	}
}

// script runs the same sequence against b and records what it saw.
func script(t *testing.T, b Backend) []outcome {
	t.Helper()
	ctx := context.Background()
	var out []outcome
	record := func(o outcome, err error) {
		if err != nil {
			o = failure(err)
		}
		out = append(out, o)
	}

	var firstID uint64
	for _, name := range []string{"ann", "bob", "cat"} {
		res, err := b.CreateReservation(ctx, book(name))
		if firstID == 0 && err == nil {
			firstID = res.Reservation.ID
		}
		record(outcome{Table: res.TableNumber}, err)
	}

	bad := book("dan")
	bad.Time = "22:15"
	_, err := b.CreateReservation(ctx, bad)
	record(outcome{}, err)

	c, err := b.CancelReservation(ctx, model.CancelRequest{ReservationID: firstID, Email: "eve@example.com"})
	record(outcome{Cancel: c}, err)
	c, err = b.CancelReservation(ctx, model.CancelRequest{ReservationID: firstID, Email: "ann@example.com"})
	record(outcome{Cancel: c}, err)
	c, err = b.CancelReservation(ctx, model.CancelRequest{ReservationID: firstID, Email: "ann@example.com"})
	record(outcome{Cancel: c}, err)
	c, err = b.CancelReservation(ctx, model.CancelRequest{ReservationID: 999})
	record(outcome{Cancel: c}, err)

	cust, err := b.UpsertCustomer(ctx, model.Customer{Name: "Ann A", Email: "ann@example.com", NewsletterOptIn: true})
	record(outcome{Name: cust.Name}, err)
	cust, err = b.GetCustomerByEmail(ctx, "ann@example.com")
	record(outcome{Name: cust.Name}, err)
	_, err = b.GetCustomerByEmail(ctx, "nobody@example.com")
	record(outcome{}, err)

	page, err := b.ListReservations(ctx, 1)
	record(outcome{Total: page.Total}, err)

	creds := model.Credentials{Email: "zoe@example.com", Password: "password123"}
	_, err = b.Register(ctx, creds)
	record(outcome{}, err)
	_, err = b.Register(ctx, creds)
	record(outcome{}, err)
	creds.Password = "wrong-password"
	_, err = b.Login(ctx, creds)
	record(outcome{}, err)

	return out
}

func TestBackendsAgree(t *testing.T) {
	rest := script(t, newRESTBackend(t))
	direct := script(t, newDirectBackend(t))
	assert.Equal(t, direct, rest)

	// Spot-check the shared expectations.
	require.Len(t, direct, 15)
	assert.Equal(t, 1, direct[0].Table)
	assert.Equal(t, 2, direct[1].Table)
	assert.Equal(t, http.StatusConflict, direct[2].Status)
	assert.NotEmpty(t, direct[2].Alternatives)
	assert.Equal(t, http.StatusBadRequest, direct[3].Status)
	assert.Equal(t, outcome{Status: http.StatusForbidden, Message: "forbidden"}, direct[4])
	assert.Equal(t, model.CancelResult{Success: true}, direct[5].Cancel)
	assert.Equal(t, model.CancelResult{Success: true, AlreadyCancelled: true}, direct[6].Cancel)
	assert.Equal(t, http.StatusNotFound, direct[7].Status)
	assert.Equal(t, "Ann A", direct[9].Name)
	assert.Equal(t, http.StatusNotFound, direct[10].Status)
	assert.Equal(t, 2, direct[11].Total)
	assert.Equal(t, http.StatusConflict, direct[13].Status)
	assert.Equal(t, http.StatusUnauthorized, direct[14].Status)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "grpc"})
	assert.Error(t, err)
	_, err = New(Config{Backend: BackendDirect})
	assert.Error(t, err)
	_, err = New(Config{Backend: BackendREST})
	assert.Error(t, err)
}

func TestAllWalksPages(t *testing.T) {
	b := newDirectBackend(t)
	ctx := context.Background()
	for _, slot := range model.ServiceSlots[:6] {
		for _, name := range []string{"ann", "bob"} {
			req := book(name)
			req.Time = string(slot)
			_, err := b.CreateReservation(ctx, req)
			require.NoError(t, err)
		}
	}
	n := 0
	for _, err := range All(ctx, b) {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 12, n)
}
