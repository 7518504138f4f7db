package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

const sessionCookieName = "rr_session"

// SessionCookies seals a verified model.Session into an HMAC-signed (and,
// with a block key, encrypted) cookie so browser clients need not handle
// bearer tokens.  The cookie is only ever written from a session that was
// itself verified at login.
type SessionCookies struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
}

// NewSessionCookies builds the codec.  blockKey may be empty, in which case
// the cookie is signed but not encrypted.
func NewSessionCookies(hashKey, blockKey string, ttl time.Duration) *SessionCookies {
	var block []byte
	if blockKey != "" {
		block = []byte(blockKey)
	}
	sc := securecookie.New([]byte(hashKey), block)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(ttl.Seconds()))
	return &SessionCookies{sc: sc, ttl: ttl}
}

// Set writes the cookie for sess.
func (s *SessionCookies) Set(c echo.Context, sess model.Session) error {
	encoded, err := s.sc.Encode(sessionCookieName, sess)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Request().TLS != nil,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return nil
}

// Clear expires the cookie.
func (s *SessionCookies) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Get decodes the session cookie of r, if any.
func (s *SessionCookies) Get(r *http.Request) (model.Session, bool) {
	if s == nil {
		return model.Session{}, false
	}
	ck, err := r.Cookie(sessionCookieName)
	if err != nil {
		return model.Session{}, false
	}
	var sess model.Session
	if err := s.sc.Decode(sessionCookieName, ck.Value, &sess); err != nil || !sess.Authenticated() {
		return model.Session{}, false
	}
	return sess, true
}
