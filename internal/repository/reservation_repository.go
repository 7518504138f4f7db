package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// ReservationRepo is the MySQL ledger.  The reservations table carries a
// generated column active_slot that is 1 for pending/confirmed rows and
// NULL for cancelled ones; the unique key over (reservation_date,
// reservation_time, table_number, active_slot) therefore admits any
// number of cancelled rows but only one active row per table and slot.
type ReservationRepo struct {
	db   dbtx
	inTx bool
}

const reservationSelect = `SELECT r.id, r.customer_id, c.name, c.email, c.phone,
       r.reservation_date, r.reservation_time, r.number_of_guests, r.table_number,
       r.status, r.created_at, r.updated_at
  FROM reservations r
  JOIN customers c ON c.id = r.customer_id`

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res   model.Reservation
		phone sql.NullString
		date  time.Time
		slot  string
		st    string
	)
	err := row.Scan(&res.ID, &res.CustomerID, &res.CustomerName, &res.CustomerEmail, &phone,
		&date, &slot, &res.Guests, &res.TableNumber, &st, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, notFound(err)
	}
	res.CustomerPhone = phone.String
	res.Date = model.DateOf(date)
	res.Time = model.Slot(slot)
	res.Status = model.Status(st)
	return res, nil
}

// ActiveTables returns the tables held at (date, slot), ascending.
func (r *ReservationRepo) ActiveTables(ctx context.Context, date model.Date, slot model.Slot) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT table_number FROM reservations
		  WHERE reservation_date=? AND reservation_time=? AND status <> 'cancelled'
		  ORDER BY table_number`,
		date.String(), string(slot))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ActiveCounts returns active reservation counts per slot on date.  Rows
// on tables taken out of service are not counted.
func (r *ReservationRepo) ActiveCounts(ctx context.Context, date model.Date) (map[model.Slot]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.reservation_time, COUNT(*) FROM reservations r
		   JOIN restaurant_tables t ON t.table_number = r.table_number AND t.in_service=1
		  WHERE r.reservation_date=? AND r.status <> 'cancelled'
		  GROUP BY r.reservation_time`,
		date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[model.Slot]int)
	for rows.Next() {
		var (
			slot string
			n    int
		)
		if err := rows.Scan(&slot, &n); err != nil {
			return nil, err
		}
		out[model.Slot(slot)] = n
	}
	return out, rows.Err()
}

// Insert creates the reservation row and reads it back so the caller sees
// generated ids, timestamps and the joined customer fields.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations
		   (customer_id, reservation_date, reservation_time, number_of_guests, table_number, status)
		 VALUES (?,?,?,?,?,?)`,
		res.CustomerID, res.Date.String(), string(res.Time), res.Guests, res.TableNumber, string(res.Status))
	if err != nil {
		if isDuplicate(err) {
			return ErrTableTaken
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = got
	return nil
}

// GetByID returns ErrNotFound when no reservation has the id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx, reservationSelect+" WHERE r.id=?", id))
}

// GetForUpdate locks the reservation row until the surrounding transaction
// ends.  Outside a transaction it behaves like GetByID.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	q := reservationSelect + " WHERE r.id=?"
	if r.inTx {
		q += " FOR UPDATE"
	}
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// Update persists the mutable columns.  table_number is never written.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations
		    SET reservation_date=?, reservation_time=?, number_of_guests=?, status=?
		  WHERE id=?`,
		res.Date.String(), string(res.Time), res.Guests, string(res.Status), res.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrTableTaken
		}
		return err
	}
	// RowsAffected is 0 for a no-op update too; the read back below is
	// what reports a missing row.
	got, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = got
	return nil
}

// List returns a page ordered newest date first.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, int, error) {
	where, args := reservationWhere(f)
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations r JOIN customers c ON c.id = r.customer_id"+where,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	q := reservationSelect + where +
		" ORDER BY r.reservation_date DESC, r.reservation_time DESC, r.id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, append(args, f.PerPage, f.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

// reservationWhere renders the filter as a WHERE clause with ? placeholders.
func reservationWhere(f model.ReservationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "r.status=?")
		args = append(args, string(f.Status))
	}
	if f.Date != nil {
		conds = append(conds, "r.reservation_date=?")
		args = append(args, f.Date.String())
	}
	if f.CustomerEmail != "" {
		conds = append(conds, "c.email=?")
		args = append(args, model.NormalizeEmail(f.CustomerEmail))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
