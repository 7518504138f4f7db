package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// Oracle answers which tables are free for a (date, slot).  Free means no
// pending or confirmed reservation holds the table; capacity is not
// consulted.
type Oracle struct {
	store repository.Store
	loc   *time.Location
	now   func() time.Time
}

// NewOracle returns an Oracle that judges "today" in loc.
func NewOracle(store repository.Store, loc *time.Location) *Oracle {
	if loc == nil {
		loc = time.UTC
	}
	return &Oracle{store: store, loc: loc, now: time.Now}
}

// SetClock overrides the wall clock.  Tests use it to pin "today".
func (o *Oracle) SetClock(now func() time.Time) { o.now = now }

// Today is the current civil date in the restaurant's time zone.
func (o *Oracle) Today() model.Date { return model.DateOf(o.now().In(o.loc)) }

// AssignAvailableTable returns the lowest-numbered free table.  ok is false
// when every table is taken.
func (o *Oracle) AssignAvailableTable(ctx context.Context, date model.Date, slot model.Slot) (int, bool, error) {
	return o.assign(ctx, o.store, date, slot)
}

func (o *Oracle) assign(ctx context.Context, q repository.Queries, date model.Date, slot model.Slot) (int, bool, error) {
	tables, err := q.Tables().List(ctx)
	if err != nil {
		return 0, false, persistence("list tables", err)
	}
	taken, err := q.Reservations().ActiveTables(ctx, date, slot)
	if err != nil {
		return 0, false, persistence("active tables", err)
	}
	n, ok := lowestFree(tables, taken)
	return n, ok, nil
}

func lowestFree(tables []model.Table, taken []int) (int, bool) {
	held := make(map[int]struct{}, len(taken))
	for _, t := range taken {
		held[t] = struct{}{}
	}
	nums := make([]int, 0, len(tables))
	for _, t := range tables {
		nums = append(nums, t.Number)
	}
	sort.Ints(nums)
	for _, n := range nums {
		if _, ok := held[n]; !ok {
			return n, true
		}
	}
	return 0, false
}

// Availability counts free tables per slot for every slot bookable on the
// date's weekday.
func (o *Oracle) Availability(ctx context.Context, date model.Date) ([]model.SlotAvailability, error) {
	tables, err := o.store.Tables().List(ctx)
	if err != nil {
		return nil, persistence("list tables", err)
	}
	counts, err := o.store.Reservations().ActiveCounts(ctx, date)
	if err != nil {
		return nil, persistence("active counts", err)
	}
	slots := model.SlotsOn(date.Weekday())
	out := make([]model.SlotAvailability, 0, len(slots))
	for _, s := range slots {
		out = append(out, model.SlotAvailability{Time: s, FreeTables: max(len(tables)-counts[s], 0)})
	}
	return out, nil
}

// Alternatives returns up to n other slots on date that still have a free
// table, nearest to slot first.  Ties go to the earlier slot.
func (o *Oracle) Alternatives(ctx context.Context, date model.Date, slot model.Slot, n int) ([]model.Slot, error) {
	avail, err := o.Availability(ctx, date)
	if err != nil {
		return nil, err
	}
	at := slot.Index()
	var out []model.Slot
	for _, a := range avail {
		if a.FreeTables > 0 && a.Time != slot {
			out = append(out, a.Time)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return distance(out[i].Index(), at) < distance(out[j].Index(), at)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// SlotsFor lists the bookable slots for a date string.
func (o *Oracle) SlotsFor(rawDate string) ([]model.Slot, error) {
	d, err := model.ParseDate(rawDate)
	if err != nil {
		return nil, invalid("date", "must be a date in YYYY-MM-DD form")
	}
	return model.SlotsOn(d.Weekday()), nil
}

// checkDate parses a booking date and rejects days already past in the
// restaurant's time zone.
func (o *Oracle) checkDate(raw string) (model.Date, error) {
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, invalid("date", "must be a date in YYYY-MM-DD form")
	}
	if d.Before(o.Today()) {
		return model.Date{}, invalid("date", "must not be in the past")
	}
	return d, nil
}

// checkSlot parses a slot and applies the weekday rule for date.
func checkSlot(date model.Date, raw string) (model.Slot, error) {
	s, err := model.ParseSlot(raw)
	if errors.Is(err, model.ErrUnknownSlot) {
		return "", invalid("time", "must be a half-hour slot between 17:00 and 23:00")
	}
	if !s.AllowedOn(date.Weekday()) {
		return "", invalid("time", "%s is not available on %s", s, date.Weekday())
	}
	return s, nil
}
