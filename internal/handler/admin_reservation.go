package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// AdminReservationHandler serves the staff endpoints.  Routes are wrapped
// in JWTAuth and RequireRole(ADMIN).
type AdminReservationHandler struct {
	Ledger       *service.Ledger
	Cancellation *service.CancellationService
}

func NewAdminReservationHandler(s *service.Services) *AdminReservationHandler {
	return &AdminReservationHandler{Ledger: s.Ledger, Cancellation: s.Cancellation}
}

// List handles GET /v1/admin/reservations?page=&perPage=&status=&date=&email=.
func (h *AdminReservationHandler) List(c echo.Context) error {
	f := model.ReservationFilter{
		Page:          pageParam(c),
		CustomerEmail: c.QueryParam("email"),
	}
	if pp := c.QueryParam("perPage"); pp != "" {
		n, err := strconv.Atoi(pp)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "perPage: must be a number"})
		}
		f.PerPage = n
	}
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		st, err := model.ParseStatus(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status: must be pending, confirmed or cancelled"})
		}
		f.Status = st
	}
	if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
		date, err := model.ParseDate(d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date: must be a date in YYYY-MM-DD form"})
		}
		f.Date = &date
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.Ledger.ListReservations(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Get handles GET /v1/admin/reservations/:id.
func (h *AdminReservationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.Ledger.GetReservation(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Update handles PATCH /v1/admin/reservations/:id.  Only date, time,
// guests and status may change; the table stays as assigned.
func (h *AdminReservationHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var patch model.ReservationPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	r, err := h.Ledger.UpdateReservation(ctx, id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Cancel handles DELETE /v1/admin/reservations/:id.  Reservations are
// never deleted; the admin delete is a cancellation.
func (h *AdminReservationHandler) Cancel(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	return cancelReservation(c, h.Cancellation, model.CancelRequest{ReservationID: id, Admin: true})
}
