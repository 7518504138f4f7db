// Package memstore is an in-process repository.Store for development and
// tests.  Transactions are serialized by a mutex and run against a copy of
// the state that replaces the live state only on commit, so a failed or
// timed-out transaction leaves nothing behind.  The active-slot key index
// plays the role of the SQL unique constraint.
package memstore

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

type slotKey struct {
	date  string
	slot  model.Slot
	table int
}

type refreshToken struct {
	userID  uint64
	expires time.Time
	revoked bool
}

type state struct {
	customers    map[uint64]model.Customer
	emails       map[string]uint64
	tables       map[int]model.Table
	reservations map[uint64]model.Reservation
	active       map[slotKey]uint64
	users        map[uint64]model.User
	userEmails   map[string]uint64
	tokens       map[string]refreshToken
	nextID       uint64
}

func newState() *state {
	return &state{
		customers:    map[uint64]model.Customer{},
		emails:       map[string]uint64{},
		tables:       map[int]model.Table{},
		reservations: map[uint64]model.Reservation{},
		active:       map[slotKey]uint64{},
		users:        map[uint64]model.User{},
		userEmails:   map[string]uint64{},
		tokens:       map[string]refreshToken{},
	}
}

func (s *state) clone() *state {
	return &state{
		customers:    maps.Clone(s.customers),
		emails:       maps.Clone(s.emails),
		tables:       maps.Clone(s.tables),
		reservations: maps.Clone(s.reservations),
		active:       maps.Clone(s.active),
		users:        maps.Clone(s.users),
		userEmails:   maps.Clone(s.userEmails),
		tokens:       maps.Clone(s.tokens),
		nextID:       s.nextID,
	}
}

func (s *state) id() uint64 {
	s.nextID++
	return s.nextID
}

// Store is the in-memory repository.Store.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// New returns an empty store seeded with tables.
func New(tables ...model.Table) *Store {
	s := &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
	for _, t := range tables {
		s.st.tables[t.Number] = t
	}
	return s
}

// WithTx runs fn against a private copy of the state and publishes the
// copy when fn succeeds and ctx is still live.
func (s *Store) WithTx(ctx context.Context, fn func(q repository.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&view{st: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// The autocommit accessors run each call under the lock against the live
// state.
func (s *Store) Customers() repository.CustomerStore       { return autoCustomers{s} }
func (s *Store) Tables() repository.TableStore             { return autoTables{s} }
func (s *Store) Reservations() repository.ReservationStore { return autoReservations{s} }
func (s *Store) Users() repository.UserStore               { return autoUsers{s} }
func (s *Store) Tokens() repository.TokenStore             { return autoTokens{s} }

// do runs fn on a live view under the lock.  Single calls are atomic so
// they may mutate the live state directly.
func (s *Store) do(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: s.st, now: s.now})
}

// view implements every store against one state without locking.
type view struct {
	st  *state
	now func() time.Time
}

func (v *view) Customers() repository.CustomerStore       { return v }
func (v *view) Tables() repository.TableStore             { return tableView{v} }
func (v *view) Reservations() repository.ReservationStore { return reservationView{v} }
func (v *view) Users() repository.UserStore               { return userView{v} }
func (v *view) Tokens() repository.TokenStore             { return tokenView{v} }

// customers

func (v *view) GetByEmail(_ context.Context, email string) (model.Customer, error) {
	id, ok := v.st.emails[model.NormalizeEmail(email)]
	if !ok {
		return model.Customer{}, repository.ErrNotFound
	}
	return v.st.customers[id], nil
}

func (v *view) GetByID(_ context.Context, id uint64) (model.Customer, error) {
	c, ok := v.st.customers[id]
	if !ok {
		return model.Customer{}, repository.ErrNotFound
	}
	return c, nil
}

func (v *view) GetOrCreate(ctx context.Context, c model.Customer) (model.Customer, error) {
	if got, err := v.GetByEmail(ctx, c.Email); err == nil {
		return got, nil
	}
	c.ID = v.st.id()
	c.Email = model.NormalizeEmail(c.Email)
	c.CreatedAt = v.now()
	c.UpdatedAt = c.CreatedAt
	v.st.customers[c.ID] = c
	v.st.emails[c.Email] = c.ID
	return c, nil
}

func (v *view) Upsert(ctx context.Context, c model.Customer) (model.Customer, error) {
	got, err := v.GetByEmail(ctx, c.Email)
	if err != nil {
		return v.GetOrCreate(ctx, c)
	}
	got.Name = c.Name
	if c.Phone != "" {
		got.Phone = c.Phone
	}
	got.NewsletterOptIn = c.NewsletterOptIn
	got.UpdatedAt = v.now()
	v.st.customers[got.ID] = got
	return got, nil
}

// tables

type tableView struct{ *view }

func (v tableView) List(context.Context) ([]model.Table, error) {
	out := make([]model.Table, 0, len(v.st.tables))
	for _, t := range v.st.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (v tableView) Sync(_ context.Context, tables []model.Table) error {
	v.st.tables = make(map[int]model.Table, len(tables))
	for _, t := range tables {
		v.st.tables[t.Number] = t
	}
	return nil
}

// reservations

type reservationView struct{ *view }

func keyOf(r model.Reservation) slotKey {
	return slotKey{date: r.Date.String(), slot: r.Time, table: r.TableNumber}
}

// withCustomer fills the joined customer columns.
func (v reservationView) withCustomer(r model.Reservation) model.Reservation {
	c := v.st.customers[r.CustomerID]
	r.CustomerName, r.CustomerEmail, r.CustomerPhone = c.Name, c.Email, c.Phone
	return r
}

func (v reservationView) ActiveTables(_ context.Context, date model.Date, slot model.Slot) ([]int, error) {
	var out []int
	for k := range v.st.active {
		if k.date == date.String() && k.slot == slot {
			out = append(out, k.table)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (v reservationView) ActiveCounts(_ context.Context, date model.Date) (map[model.Slot]int, error) {
	out := make(map[model.Slot]int)
	for k := range v.st.active {
		if _, ok := v.st.tables[k.table]; ok && k.date == date.String() {
			out[k.slot]++
		}
	}
	return out, nil
}

func (v reservationView) Insert(_ context.Context, r *model.Reservation) error {
	if _, ok := v.st.customers[r.CustomerID]; !ok {
		return repository.ErrNotFound
	}
	k := keyOf(*r)
	if r.Status.Active() {
		if _, taken := v.st.active[k]; taken {
			return repository.ErrTableTaken
		}
	}
	r.ID = v.st.id()
	r.CreatedAt = v.now()
	r.UpdatedAt = r.CreatedAt
	stored := *r
	stored.CustomerName, stored.CustomerEmail, stored.CustomerPhone = "", "", ""
	v.st.reservations[r.ID] = stored
	if r.Status.Active() {
		v.st.active[k] = r.ID
	}
	*r = v.withCustomer(stored)
	return nil
}

func (v reservationView) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	r, ok := v.st.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return v.withCustomer(r), nil
}

func (v reservationView) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	return v.GetByID(ctx, id)
}

func (v reservationView) Update(_ context.Context, r *model.Reservation) error {
	old, ok := v.st.reservations[r.ID]
	if !ok {
		return repository.ErrNotFound
	}
	next := old
	next.Date, next.Time, next.Guests, next.Status = r.Date, r.Time, r.Guests, r.Status
	oldKey, newKey := keyOf(old), keyOf(next)
	if next.Status.Active() {
		if holder, taken := v.st.active[newKey]; taken && holder != old.ID {
			return repository.ErrTableTaken
		}
	}
	if old.Status.Active() {
		delete(v.st.active, oldKey)
	}
	if next.Status.Active() {
		v.st.active[newKey] = next.ID
	}
	next.UpdatedAt = v.now()
	v.st.reservations[next.ID] = next
	*r = v.withCustomer(next)
	return nil
}

func (v reservationView) List(_ context.Context, f model.ReservationFilter) ([]model.Reservation, int, error) {
	email := model.NormalizeEmail(f.CustomerEmail)
	var all []model.Reservation
	for _, r := range v.st.reservations {
		r = v.withCustomer(r)
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Date != nil && !r.Date.Equal(*f.Date) {
			continue
		}
		if email != "" && r.CustomerEmail != email {
			continue
		}
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.Date.Equal(b.Date) {
			return b.Date.Before(a.Date)
		}
		if a.Time != b.Time {
			return a.Time > b.Time
		}
		return a.ID > b.ID
	})
	total := len(all)
	start := min(f.Offset(), total)
	end := min(start+f.PerPage, total)
	return all[start:end], total, nil
}

// users and tokens

type userView struct{ *view }

func (v userView) Create(_ context.Context, u *model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	if _, ok := v.st.userEmails[u.Email]; ok {
		return repository.ErrEmailExists
	}
	u.ID = v.st.id()
	u.CreatedAt = v.now()
	u.UpdatedAt = u.CreatedAt
	v.st.users[u.ID] = *u
	v.st.userEmails[u.Email] = u.ID
	return nil
}

func (v userView) GetByEmail(ctx context.Context, email string) (model.User, error) {
	id, ok := v.st.userEmails[model.NormalizeEmail(email)]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return v.GetByID(ctx, id)
}

func (v userView) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := v.st.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type tokenView struct{ *view }

func (v tokenView) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	v.st.tokens[tokenHash] = refreshToken{userID: userID, expires: exp}
	return nil
}

func (v tokenView) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	t, ok := v.st.tokens[tokenHash]
	if !ok || t.revoked || v.now().After(t.expires) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (v tokenView) RevokeByHash(_ context.Context, tokenHash string) error {
	if t, ok := v.st.tokens[tokenHash]; ok {
		t.revoked = true
		v.st.tokens[tokenHash] = t
	}
	return nil
}

func (v tokenView) RevokeAllForUser(_ context.Context, userID uint64) error {
	for h, t := range v.st.tokens {
		if t.userID == userID {
			t.revoked = true
			v.st.tokens[h] = t
		}
	}
	return nil
}
