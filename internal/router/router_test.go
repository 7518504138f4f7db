package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memstore"
	"github.com/iliyamo/restaurant-reservation/internal/service"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

const secret = "router-test-secret"

func newApp(t *testing.T, tables int) (*echo.Echo, *service.Services) {
	t.Helper()
	var ts []model.Table
	for i := 1; i <= tables; i++ {
		ts = append(ts, model.Table{Number: i, Capacity: 4})
	}
	store := memstore.New(ts...)
	reg := prometheus.NewRegistry()
	svc := service.New(store, service.Options{
		Location: time.UTC,
		Auth:     service.AuthConfig{JWTSecret: secret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost},
		Logger:   zerolog.Nop(),
		Metrics:  metrics.New(reg),
	})
	svc.Oracle.SetClock(func() time.Time { return time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC) })
	t.Cleanup(svc.Booking.Wait)

	e := echo.New()
	guard := Guard{Secret: secret}
	res := handler.NewReservationHandler(svc)
	cust := handler.NewCustomerHandler(svc)
	RegisterRoutes(e, store, reg)
	RegisterAuth(e, handler.NewAuthHandler(svc.Auth, nil), guard)
	RegisterPublic(e, res, cust, guard, nil, nil)
	RegisterCustomer(e, res, cust, guard)
	RegisterAdmin(e, handler.NewAdminReservationHandler(svc), guard)
	return e, svc
}

func call(t *testing.T, e *echo.Echo, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, id uint64, email, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, email, role, 15)
	require.NoError(t, err)
	return tok.Token
}

func bookBody(name, date, slot string) model.BookingRequest {
	return model.BookingRequest{
		Customer: model.CustomerDetails{Name: name, Email: name + "@example.com"},
		Date:     date, Time: slot, Guests: 2,
	}
}

func TestBookingFlow(t *testing.T) {
	e, _ := newApp(t, 2)

	rec := call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("ann", "2025-12-24", "19:00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var first model.BookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, 1, first.TableNumber)

	rec = call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("bob", "2025-12-24", "19:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("cat", "2025-12-24", "19:00"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	var conflict struct {
		Error        string       `json:"error"`
		Alternatives []model.Slot `json:"alternatives"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Contains(t, conflict.Error, "no table available")
	assert.Equal(t, []model.Slot{"18:30", "19:30", "18:00"}, conflict.Alternatives)

	path := "/v1/reservations/" + jsonID(first.Reservation.ID) + "/cancel"
	rec = call(t, e, http.MethodPost, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = call(t, e, http.MethodPost, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"alreadyCancelled":true}`, rec.Body.String())

	rec = call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("cat", "2025-12-24", "19:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tableNumber":1`)
}

func TestBookingValidationIs400(t *testing.T) {
	e, _ := newApp(t, 2)
	rec := call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("sam", "2025-12-28", "22:00"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"time:`)

	rec = call(t, e, http.MethodPost, "/v1/reservations/abc/cancel", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e, http.MethodPost, "/v1/reservations/999/cancel", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("ann", "2025-12-24", "19:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var booked model.BookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booked))
	path := "/v1/reservations/" + jsonID(booked.Reservation.ID) + "/cancel"

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"email":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())

	rec = call(t, e, http.MethodPost, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestSlotsAndAvailability(t *testing.T) {
	e, _ := newApp(t, 2)
	rec := call(t, e, http.MethodGet, "/v1/slots?date=2025-12-28", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slots struct {
		Slots []model.Slot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	assert.Len(t, slots.Slots, 9)

	rec = call(t, e, http.MethodGet, "/v1/availability?date=2025-12-24", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"freeTables":2`)

	rec = call(t, e, http.MethodGet, "/v1/slots?date=soon", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesNeedAdmin(t *testing.T) {
	e, _ := newApp(t, 2)
	call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("ann", "2025-12-24", "19:00"))

	assert.Equal(t, http.StatusUnauthorized, call(t, e, http.MethodGet, "/v1/admin/reservations", "", nil).Code)
	customer := bearer(t, 1, "ann@example.com", model.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, call(t, e, http.MethodGet, "/v1/admin/reservations", customer, nil).Code)

	admin := bearer(t, 2, "boss@example.com", model.RoleAdmin)
	rec := call(t, e, http.MethodGet, "/v1/admin/reservations?status=confirmed&date=2025-12-24", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.ReservationPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, 1, page.Total)
	id := jsonID(page.Reservations[0].ID)

	rec = call(t, e, http.MethodPatch, "/v1/admin/reservations/"+id, admin, map[string]any{"guests": 6})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"guests":6`)

	rec = call(t, e, http.MethodDelete, "/v1/admin/reservations/"+id, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, e, http.MethodPatch, "/v1/admin/reservations/"+id, admin, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = call(t, e, http.MethodGet, "/v1/admin/reservations?status=done", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelAsAdminIgnoresEmail(t *testing.T) {
	e, _ := newApp(t, 1)
	rec := call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("ann", "2025-12-24", "19:00"))
	var res model.BookingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	path := "/v1/reservations/" + jsonID(res.Reservation.ID) + "/cancel"

	rec = call(t, e, http.MethodPost, path, "", map[string]string{"email": "mallory@example.com"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := bearer(t, 2, "boss@example.com", model.RoleAdmin)
	rec = call(t, e, http.MethodPost, path, admin, map[string]string{"email": "mallory@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCustomerLookupIsScoped(t *testing.T) {
	e, _ := newApp(t, 1)
	rec := call(t, e, http.MethodPut, "/v1/customers", "", map[string]any{
		"name": "Ann", "email": "ann@example.com", "newsletterOptIn": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ann := bearer(t, 1, "ann@example.com", model.RoleCustomer)
	rec = call(t, e, http.MethodGet, "/v1/customers?email=ann@example.com", ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"newsletterOptIn":true`)

	bob := bearer(t, 3, "bob@example.com", model.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, call(t, e, http.MethodGet, "/v1/customers?email=ann@example.com", bob, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, e, http.MethodGet, "/v1/customers?email=ann@example.com", "", nil).Code)
}

func TestAuthAndMyReservations(t *testing.T) {
	e, _ := newApp(t, 2)
	rec := call(t, e, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "password123", "role": "ADMIN",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var auth model.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	assert.Equal(t, model.RoleCustomer, auth.User.Role)

	call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("ann", "2025-12-24", "19:00"))
	call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("bob", "2025-12-24", "19:00"))

	rec = call(t, e, http.MethodGet, "/v1/my-reservations", auth.Access.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.ReservationPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)

	rec = call(t, e, http.MethodGet, "/v1/me", auth.Access.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ann@example.com"`)

	rec = call(t, e, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "ann@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e, _ := newApp(t, 1)
	call(t, e, http.MethodPost, "/v1/reservations", "", bookBody("ann", "2025-12-24", "19:00"))

	rec := call(t, e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `reservations_booked_total{result="ok"} 1`)
}

func jsonID(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
