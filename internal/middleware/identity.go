package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userID identifies the caller for rate-limit keys: the session's user id,
// or "guest" for anonymous callers.
func userID(c echo.Context) string {
	if s := SessionFrom(c); s.Authenticated() {
		return strconv.FormatUint(s.UserID, 10)
	}
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
