package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strconv"
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

// sessionKey is the echo context key holding the caller's model.Session.
const sessionKey = "session"

// JWTAuth returns an Echo middleware that requires a verified session.  A
// Bearer access token is tried first, then the session cookie.  The
// session is stored in the context (see SessionFrom) along with the
// "user_id" and "role" keys used by the rate limiter.
func JWTAuth(secret string, cookies *SessionCookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, presented, ok := resolveSession(c, secret, cookies)
			if !ok {
				if presented {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			setSession(c, sess)
			return next(c)
		}
	}
}

// OptionalAuth attaches a session when the caller presents one and lets
// anonymous callers through.  A token that is presented but fails
// verification is still rejected, so a typo never silently downgrades an
// admin to a guest.
func OptionalAuth(secret string, cookies *SessionCookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, presented, ok := resolveSession(c, secret, cookies)
			if presented && !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if ok {
				setSession(c, sess)
			}
			return next(c)
		}
	}
}

// SessionFrom returns the verified session of the request, or the zero
// (anonymous) session.
func SessionFrom(c echo.Context) model.Session {
	if s, ok := c.Get(sessionKey).(model.Session); ok {
		return s
	}
	return model.Session{}
}

// resolveSession reports the session, whether the caller presented any
// credential, and whether it verified.
func resolveSession(c echo.Context, secret string, cookies *SessionCookies) (model.Session, bool, bool) {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		sess, err := utils.ParseAccessToken(secret, raw)
		return sess, true, err == nil
	}
	if sess, ok := cookies.Get(c.Request()); ok {
		return sess, true, true
	}
	return model.Session{}, false, false
}

func setSession(c echo.Context, sess model.Session) {
	c.Set(sessionKey, sess)
	c.Set("user_id", strconv.FormatUint(sess.UserID, 10))
	c.Set("role", sess.Role)
}
