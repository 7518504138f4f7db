package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

type CustomerHandler struct {
	Directory *service.Directory
}

func NewCustomerHandler(s *service.Services) *CustomerHandler {
	return &CustomerHandler{Directory: s.Directory}
}

// Upsert handles PUT /v1/customers, the newsletter signup path.  Name,
// phone and opt-in are overwritten on every call.
func (h *CustomerHandler) Upsert(c echo.Context) error {
	var in model.Customer
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Directory.UpsertCustomer(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetByEmail handles GET /v1/customers?email=.  Customers may only look
// themselves up; admins may look up anyone.
func (h *CustomerHandler) GetByEmail(c echo.Context) error {
	email := model.NormalizeEmail(c.QueryParam("email"))
	sess := middleware.SessionFrom(c)
	if !sess.IsAdmin() && email != model.NormalizeEmail(sess.Email) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cust, err := h.Directory.GetCustomerByEmail(ctx, email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}
