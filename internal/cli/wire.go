package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/database"
	"github.com/iliyamo/restaurant-reservation/internal/logging"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/notify"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memstore"
	"github.com/iliyamo/restaurant-reservation/internal/repository/pgstore"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// app is everything a command may need, built from the environment.
type app struct {
	cfg        config.Config
	log        zerolog.Logger
	restaurant config.Restaurant
	store      repository.Store
	registry   *prometheus.Registry
	notifier   notify.Transport
	services   *service.Services
}

// bootstrap loads configuration and opens the store.  The schema is
// migrated and the table layout synced so every command starts from a
// usable database.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Env, cfg.LogLevel)

	rest, err := config.LoadRestaurant(cfg.RestaurantFile)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg, rest, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, restaurant: rest, store: store}, nil
}

// withServices adds metrics, the notifier and the service layer.
func (a *app) withServices() error {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.registry)

	n, err := notify.New(notify.Config{
		Transport:    a.cfg.NotifyTransport,
		RabbitURL:    a.cfg.RabbitURL,
		Queue:        a.cfg.NotifyQueue,
		KafkaBrokers: a.cfg.KafkaBrokers,
		KafkaTopic:   a.cfg.KafkaTopic,
	}, a.log)
	if err != nil {
		return err
	}
	a.notifier = n
	a.services = service.New(a.store, service.Options{
		Location: a.restaurant.Location(),
		Booking: service.BookingConfig{
			GuestLimits:   service.GuestLimits(a.restaurant.GuestLimits),
			Timeout:       a.cfg.BookingTimeout,
			NotifyTimeout: a.cfg.NotifyTimeout,
		},
		Auth: service.AuthConfig{
			JWTSecret:      a.cfg.JWTSecret,
			AccessTTLMin:   a.cfg.AccessTTLMin,
			RefreshTTLDays: a.cfg.RefreshTTLDays,
			BcryptCost:     a.cfg.BcryptCost,
		},
		RequireCancelOwner: a.cfg.CancelRequireOwner,
		Notifier:           n,
		Logger:             a.log,
		Metrics:            m,
	})
	return nil
}

// close drains pending notifications before releasing resources.
func (a *app) close() {
	if a.services != nil {
		a.services.Booking.Wait()
	}
	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close notifier")
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close store")
	}
}

func openStore(ctx context.Context, cfg config.Config, rest config.Restaurant, log zerolog.Logger) (repository.Store, error) {
	var (
		store   repository.Store
		applied []string
	)
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memstore.New(rest.Tables...), nil
	case config.DriverPostgres:
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if applied, err = database.MigratePostgres(ctx, pg.Pool()); err != nil {
			pg.Close()
			return nil, err
		}
		store = pg
	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		if applied, err = database.MigrateMySQL(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		store = repository.NewMySQLStore(db)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	for _, v := range applied {
		log.Info().Str("version", v).Msg("migration applied")
	}
	if err := repository.SyncTables(ctx, store, rest.Tables); err != nil {
		store.Close()
		return nil, fmt.Errorf("sync tables: %w", err)
	}
	log.Info().Str("driver", cfg.DBDriver).Int("tables", len(rest.Tables)).Msg("store ready")
	return store, nil
}
