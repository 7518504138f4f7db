// Package pgstore implements repository.Store on PostgreSQL through a pgx
// connection pool.  The single-table-per-slot rule is a partial unique
// index over non-cancelled reservations.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres-backed repository.Store.
type Store struct {
	*queries
	pool *pgxpool.Pool
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{queries: newQueries(pool, false), pool: pool}
}

// Pool exposes the pool, for migrations.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// WithTx runs fn inside a READ COMMITTED transaction.  A unique violation
// aborts a Postgres transaction, so callers retrying after ErrTableTaken
// must start a new WithTx.
func (s *Store) WithTx(ctx context.Context, fn func(q repository.Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()
	if err := fn(newQueries(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

type queries struct {
	customers    *customerRepo
	tables       *tableRepo
	reservations *reservationRepo
	users        *userRepo
	tokens       *tokenRepo
}

func newQueries(q querier, inTx bool) *queries {
	return &queries{
		customers:    &customerRepo{q: q},
		tables:       &tableRepo{q: q},
		reservations: &reservationRepo{q: q, inTx: inTx},
		users:        &userRepo{q: q},
		tokens:       &tokenRepo{q: q},
	}
}

func (q *queries) Customers() repository.CustomerStore       { return q.customers }
func (q *queries) Tables() repository.TableStore             { return q.tables }
func (q *queries) Reservations() repository.ReservationStore { return q.reservations }
func (q *queries) Users() repository.UserStore               { return q.users }
func (q *queries) Tokens() repository.TokenStore             { return q.tokens }

func isUniqueViolation(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == uniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
