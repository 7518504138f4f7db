package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// ReservationHandler serves the guest-facing booking endpoints.
type ReservationHandler struct {
	Booking      *service.BookingService
	Cancellation *service.CancellationService
	Oracle       *service.Oracle
	Ledger       *service.Ledger
}

func NewReservationHandler(s *service.Services) *ReservationHandler {
	return &ReservationHandler{
		Booking:      s.Booking,
		Cancellation: s.Cancellation,
		Oracle:       s.Oracle,
		Ledger:       s.Ledger,
	}
}

// Slots handles GET /v1/slots?date=.  It lists the slots bookable on the
// date's weekday, regardless of availability.
func (h *ReservationHandler) Slots(c echo.Context) error {
	slots, err := h.Oracle.SlotsFor(c.QueryParam("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": c.QueryParam("date"), "slots": slots})
}

// Availability handles GET /v1/availability?date= with free table counts
// per slot.
func (h *ReservationHandler) Availability(c echo.Context) error {
	date, err := model.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date: must be a date in YYYY-MM-DD form"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	avail, err := h.Oracle.Availability(ctx, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "slots": avail})
}

// Create handles POST /v1/reservations.  The body is a BookingRequest;
// the response is 201 with the reservation and its table number.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req model.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	// Book applies its own transaction timeout.
	res, err := h.Booking.Book(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Cancel handles POST /v1/reservations/:id/cancel with an optional
// {"email": ...} body.  Cancelling an already cancelled reservation
// succeeds with alreadyCancelled set.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return cancelReservation(c, h.Cancellation, model.CancelRequest{
		ReservationID: id,
		Email:         body.Email,
		Admin:         middleware.SessionFrom(c).IsAdmin(),
	})
}

// MyReservations handles GET /v1/my-reservations: the reservations booked
// under the session's email, newest first.
func (h *ReservationHandler) MyReservations(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if sess.Email == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.Ledger.ListReservations(ctx, model.ReservationFilter{
		Page:          pageParam(c),
		CustomerEmail: sess.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func cancelReservation(c echo.Context, svc *service.CancellationService, req model.CancelRequest) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	_, err := svc.Cancel(ctx, req)
	if errors.Is(err, service.ErrAlreadyCancelled) {
		return c.JSON(http.StatusOK, model.CancelResult{Success: true, AlreadyCancelled: true})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, model.CancelResult{Success: true})
}
