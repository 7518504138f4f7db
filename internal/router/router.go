package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Guard carries what the auth middlewares need to verify a caller: the
// JWT signing secret and the optional session cookie codec.
type Guard struct {
	Secret  string
	Cookies *middleware.SessionCookies
}

func (g Guard) required() echo.MiddlewareFunc { return middleware.JWTAuth(g.Secret, g.Cookies) }
func (g Guard) optional() echo.MiddlewareFunc { return middleware.OptionalAuth(g.Secret, g.Cookies) }

// RegisterRoutes registers the unauthenticated operational endpoints: the
// health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, store handler.Pinger, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health(store))
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// RegisterAuth registers the account endpoints.  Register, login, refresh
// and logout need no session; /v1/me does.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, guard Guard) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout works with a refresh token alone; a valid access token lets it
	// revoke every token of the user instead.
	g.POST("/logout", a.Logout, guard.optional())

	e.GET("/v1/me", a.Me, guard.required())
}

// RegisterPublic registers the guest booking surface.  A session is
// optional everywhere here; when present it only widens what cancel
// allows.  cache and limit may be nil.
func RegisterPublic(e *echo.Echo, r *handler.ReservationHandler, c *handler.CustomerHandler, guard Guard, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", guard.optional())

	slots := []echo.MiddlewareFunc{}
	if cache != nil {
		slots = append(slots, cache)
	}
	g.GET("/slots", r.Slots, slots...)
	g.GET("/availability", r.Availability)

	writes := []echo.MiddlewareFunc{}
	if limit != nil {
		writes = append(writes, limit)
	}
	g.POST("/reservations", r.Create, writes...)
	g.POST("/reservations/:id/cancel", r.Cancel, writes...)
	g.PUT("/customers", c.Upsert, writes...)
}

// RegisterCustomer registers endpoints for any signed-in user.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, c *handler.CustomerHandler, guard Guard) {
	g := e.Group(
		"/v1",
		guard.required(),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)
	g.GET("/my-reservations", r.MyReservations)
	g.GET("/customers", c.GetByEmail)
}

// RegisterAdmin registers the staff endpoints under /v1/admin.  All routes
// require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminReservationHandler, guard Guard) {
	g := e.Group(
		"/v1/admin",
		guard.required(),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/reservations", h.List)
	g.GET("/reservations/:id", h.Get)
	g.PATCH("/reservations/:id", h.Update)
	g.DELETE("/reservations/:id", h.Cancel)
}
