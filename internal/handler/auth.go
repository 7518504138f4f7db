package handler

import (
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing
	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth    *service.AuthService
	Cookies *middleware.SessionCookies
}

func NewAuthHandler(auth *service.AuthService, cookies *middleware.SessionCookies) *AuthHandler {
	return &AuthHandler{Auth: auth, Cookies: cookies}
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates a CUSTOMER account and returns tokens immediately.  A
// role in the body is ignored.
func (h *AuthHandler) Register(c echo.Context) error {
	var req model.Credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.Auth.Register(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	h.setCookie(c, resp)
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.  Browser
// clients also receive the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.Credentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.Auth.Login(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	h.setCookie(c, resp)
	return c.JSON(http.StatusOK, resp)
}

// Refresh validates by hash, revokes the old token and issues a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	h.setCookie(c, resp)
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the refresh token in the body, or every token of the
// session's user when the body has none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.SessionFrom(c).UserID, req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the verified session.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.SessionFrom(c))
}

func (h *AuthHandler) setCookie(c echo.Context, resp model.AuthResponse) {
	if h.Cookies == nil {
		return
	}
	sess := model.Session{UserID: resp.User.ID, Email: resp.User.Email, Role: resp.User.Role}
	if err := h.Cookies.Set(c, sess); err != nil {
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("session cookie not set")
	}
}
