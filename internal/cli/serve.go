package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/notify"
	"github.com/iliyamo/restaurant-reservation/internal/router"
	"github.com/iliyamo/restaurant-reservation/internal/tracing"
)

const serviceName = "restaurant-reservation"

func NewServeCmd() *cobra.Command {
	var noWorker bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: "Start the HTTP API.  With NOTIFY_TRANSPORT=rabbitmq the notification " +
			"consumer runs alongside it unless --no-worker is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withServices(); err != nil {
				return err
			}
			shutdownTracing, err := tracing.InitTracerProvider(serviceName, a.cfg.JaegerEndpoint, a.log)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					a.log.Warn().Err(err).Msg("tracer shutdown")
				}
			}()

			e := newEcho(a)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				addr := ":" + a.cfg.Port
				a.log.Info().Str("addr", addr).Str("env", a.cfg.Env).Msg("listening")
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return e.Shutdown(sctx)
			})
			if a.cfg.NotifyTransport == notify.TransportRabbitMQ && !noWorker {
				consumer := notify.NewConsumer(a.cfg.RabbitURL, a.cfg.NotifyQueue, a.cfg.NotifyLogPath, a.log)
				g.Go(func() error { return consumer.Run(gctx) })
			}
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&noWorker, "no-worker", false, "do not run the notification consumer in this process")
	return cmd
}

// newEcho builds the HTTP application: global middleware first, then the
// route groups.
func newEcho(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(a.log))
	e.Use(middleware.Tracing(serviceName))

	rdb := config.LoadRedisConfig().Connect(context.Background(), a.log)
	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb, a.log)
	}
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, a.log)

	cookies := middleware.NewSessionCookies(a.cfg.SessionHashKey, a.cfg.SessionBlockKey,
		time.Duration(a.cfg.AccessTTLMin)*time.Minute)
	guard := router.Guard{Secret: a.cfg.JWTSecret, Cookies: cookies}

	res := handler.NewReservationHandler(a.services)
	cust := handler.NewCustomerHandler(a.services)

	router.RegisterRoutes(e, a.store, a.registry)
	router.RegisterAuth(e, handler.NewAuthHandler(a.services.Auth, cookies), guard)
	router.RegisterPublic(e, res, cust, guard, cache, limit)
	router.RegisterCustomer(e, res, cust, guard)
	router.RegisterAdmin(e, handler.NewAdminReservationHandler(a.services), guard)
	return e
}
