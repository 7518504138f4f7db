package memstore

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// The auto* adapters give every call its own critical section.

type autoCustomers struct{ s *Store }

func (a autoCustomers) GetByEmail(ctx context.Context, email string) (c model.Customer, err error) {
	err = a.s.do(func(v *view) error { c, err = v.GetByEmail(ctx, email); return err })
	return c, err
}

func (a autoCustomers) GetByID(ctx context.Context, id uint64) (c model.Customer, err error) {
	err = a.s.do(func(v *view) error { c, err = v.GetByID(ctx, id); return err })
	return c, err
}

func (a autoCustomers) GetOrCreate(ctx context.Context, in model.Customer) (c model.Customer, err error) {
	err = a.s.do(func(v *view) error { c, err = v.GetOrCreate(ctx, in); return err })
	return c, err
}

func (a autoCustomers) Upsert(ctx context.Context, in model.Customer) (c model.Customer, err error) {
	err = a.s.do(func(v *view) error { c, err = v.Upsert(ctx, in); return err })
	return c, err
}

type autoTables struct{ s *Store }

func (a autoTables) List(ctx context.Context) (out []model.Table, err error) {
	err = a.s.do(func(v *view) error { out, err = v.Tables().List(ctx); return err })
	return out, err
}

func (a autoTables) Sync(ctx context.Context, tables []model.Table) error {
	return a.s.do(func(v *view) error { return v.Tables().Sync(ctx, tables) })
}

type autoReservations struct{ s *Store }

func (a autoReservations) ActiveTables(ctx context.Context, date model.Date, slot model.Slot) (out []int, err error) {
	err = a.s.do(func(v *view) error { out, err = v.Reservations().ActiveTables(ctx, date, slot); return err })
	return out, err
}

func (a autoReservations) ActiveCounts(ctx context.Context, date model.Date) (out map[model.Slot]int, err error) {
	err = a.s.do(func(v *view) error { out, err = v.Reservations().ActiveCounts(ctx, date); return err })
	return out, err
}

func (a autoReservations) Insert(ctx context.Context, r *model.Reservation) error {
	return a.s.do(func(v *view) error { return v.Reservations().Insert(ctx, r) })
}

func (a autoReservations) GetByID(ctx context.Context, id uint64) (r model.Reservation, err error) {
	err = a.s.do(func(v *view) error { r, err = v.Reservations().GetByID(ctx, id); return err })
	return r, err
}

func (a autoReservations) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	return a.GetByID(ctx, id)
}

func (a autoReservations) Update(ctx context.Context, r *model.Reservation) error {
	return a.s.do(func(v *view) error { return v.Reservations().Update(ctx, r) })
}

func (a autoReservations) List(ctx context.Context, f model.ReservationFilter) (out []model.Reservation, total int, err error) {
	err = a.s.do(func(v *view) error { out, total, err = v.Reservations().List(ctx, f); return err })
	return out, total, err
}

type autoUsers struct{ s *Store }

func (a autoUsers) Create(ctx context.Context, u *model.User) error {
	return a.s.do(func(v *view) error { return v.Users().Create(ctx, u) })
}

func (a autoUsers) GetByEmail(ctx context.Context, email string) (u model.User, err error) {
	err = a.s.do(func(v *view) error { u, err = v.Users().GetByEmail(ctx, email); return err })
	return u, err
}

func (a autoUsers) GetByID(ctx context.Context, id uint64) (u model.User, err error) {
	err = a.s.do(func(v *view) error { u, err = v.Users().GetByID(ctx, id); return err })
	return u, err
}

type autoTokens struct{ s *Store }

func (a autoTokens) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return a.s.do(func(v *view) error { return v.Tokens().StoreRefresh(ctx, userID, tokenHash, exp) })
}

func (a autoTokens) ValidateRefresh(ctx context.Context, tokenHash string) (id uint64, err error) {
	err = a.s.do(func(v *view) error { id, err = v.Tokens().ValidateRefresh(ctx, tokenHash); return err })
	return id, err
}

func (a autoTokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	return a.s.do(func(v *view) error { return v.Tokens().RevokeByHash(ctx, tokenHash) })
}

func (a autoTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return a.s.do(func(v *view) error { return v.Tokens().RevokeAllForUser(ctx, userID) })
}
