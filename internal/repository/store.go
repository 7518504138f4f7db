package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// CustomerStore persists guest identities.
type CustomerStore interface {
	GetByEmail(ctx context.Context, email string) (model.Customer, error)
	GetByID(ctx context.Context, id uint64) (model.Customer, error)
	// GetOrCreate returns the customer with c.Email, inserting c when none
	// exists.  An existing row is returned untouched.
	GetOrCreate(ctx context.Context, c model.Customer) (model.Customer, error)
	// Upsert inserts c or overwrites name, phone and opt-in of the
	// existing row with the same email.
	Upsert(ctx context.Context, c model.Customer) (model.Customer, error)
}

// TableStore exposes the static table inventory.
type TableStore interface {
	List(ctx context.Context) ([]model.Table, error)
	Sync(ctx context.Context, tables []model.Table) error
}

// ReservationStore is the ledger's storage.
type ReservationStore interface {
	// ActiveTables returns the table numbers held by non-cancelled
	// reservations at (date, slot).
	ActiveTables(ctx context.Context, date model.Date, slot model.Slot) ([]int, error)
	// ActiveCounts returns the number of non-cancelled reservations per
	// slot on date, counting only tables currently in service.
	ActiveCounts(ctx context.Context, date model.Date) (map[model.Slot]int, error)
	// Insert stores r and fills in its ID, timestamps and customer fields.
	// It fails with ErrTableTaken if the table is already held.
	Insert(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	// GetForUpdate is GetByID with a row lock inside a transaction.
	GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error)
	// Update writes date, time, guests and status of r.  It fails with
	// ErrTableTaken if the change collides with another active row.
	Update(ctx context.Context, r *model.Reservation) error
	// List returns one page of reservations and the total match count.
	List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, int, error)
}

// UserStore persists login accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Queries groups the stores bound to one connection or transaction.
type Queries interface {
	Customers() CustomerStore
	Tables() TableStore
	Reservations() ReservationStore
	Users() UserStore
	Tokens() TokenStore
}

// Store is a storage backend.  The embedded Queries run in autocommit
// mode; WithTx runs fn against stores bound to a single transaction that
// commits when fn returns nil and rolls back otherwise.
type Store interface {
	Queries
	WithTx(ctx context.Context, fn func(q Queries) error) error
	Ping(ctx context.Context) error
	Close() error
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries binds the MySQL repositories to one dbtx.
type queries struct {
	customers    *CustomerRepo
	tables       *TableRepo
	reservations *ReservationRepo
	users        *UserRepo
	tokens       *TokenRepo
	inTx         bool
}

func newQueries(db dbtx, inTx bool) *queries {
	return &queries{
		customers:    &CustomerRepo{db: db},
		tables:       &TableRepo{db: db},
		reservations: &ReservationRepo{db: db, inTx: inTx},
		users:        &UserRepo{db: db},
		tokens:       &TokenRepo{db: db},
		inTx:         inTx,
	}
}

func (q *queries) Customers() CustomerStore       { return q.customers }
func (q *queries) Tables() TableStore             { return q.tables }
func (q *queries) Reservations() ReservationStore { return q.reservations }
func (q *queries) Users() UserStore               { return q.users }
func (q *queries) Tokens() TokenStore             { return q.tokens }

// MySQLStore is the MySQL-backed Store.
type MySQLStore struct {
	*queries
	db *sql.DB
}

// NewMySQLStore wraps an open *sql.DB.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{queries: newQueries(db, false), db: db}
}

// DB exposes the underlying pool, for migrations.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// WithTx begins a transaction, runs fn and commits.  The transaction is
// tied to ctx: if ctx expires before commit the driver rolls it back.
func (s *MySQLStore) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(newQueries(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (s *MySQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *MySQLStore) Close() error { return s.db.Close() }

// SyncTables replaces the table inventory in one transaction so readers
// never observe a partially synced inventory.
func SyncTables(ctx context.Context, s Store, tables []model.Table) error {
	return s.WithTx(ctx, func(q Queries) error {
		return q.Tables().Sync(ctx, tables)
	})
}
