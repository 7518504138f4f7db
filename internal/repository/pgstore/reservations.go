package pgstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

type reservationRepo struct {
	q    querier
	inTx bool
}

const reservationSelect = `SELECT r.id, r.customer_id, c.name, c.email, COALESCE(c.phone, ''),
       r.reservation_date, r.reservation_time, r.number_of_guests, r.table_number,
       r.status, r.created_at, r.updated_at
  FROM reservations r
  JOIN customers c ON c.id = r.customer_id`

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var (
		res  model.Reservation
		date time.Time
		slot string
		st   string
	)
	err := row.Scan(&res.ID, &res.CustomerID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
		&date, &slot, &res.Guests, &res.TableNumber, &st, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, notFound(err)
	}
	res.Date = model.DateOf(date)
	res.Time = model.Slot(slot)
	res.Status = model.Status(st)
	return res, nil
}

func (r *reservationRepo) ActiveTables(ctx context.Context, date model.Date, slot model.Slot) ([]int, error) {
	rows, err := r.q.Query(ctx,
		`SELECT table_number FROM reservations
		  WHERE reservation_date=$1 AND reservation_time=$2 AND status <> 'cancelled'
		  ORDER BY table_number`,
		date.Time, string(slot))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (r *reservationRepo) ActiveCounts(ctx context.Context, date model.Date) (map[model.Slot]int, error) {
	rows, err := r.q.Query(ctx,
		`SELECT r.reservation_time, COUNT(*) FROM reservations r
		   JOIN restaurant_tables t ON t.table_number = r.table_number AND t.in_service
		  WHERE r.reservation_date=$1 AND r.status <> 'cancelled'
		  GROUP BY r.reservation_time`,
		date.Time)
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

func (r *reservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
	var id uint64
	err := r.q.QueryRow(ctx,
		`INSERT INTO reservations
		   (customer_id, reservation_date, reservation_time, number_of_guests, table_number, status)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id`,
		res.CustomerID, res.Date.Time, string(res.Time), res.Guests, res.TableNumber, string(res.Status)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrTableTaken
		}
		return err
	}
	got, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*res = got
	return nil
}

func (r *reservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReservation(r.q.QueryRow(ctx, reservationSelect+" WHERE r.id=$1", id))
}

func (r *reservationRepo) GetForUpdate(ctx context.Context, id uint64) (model.Reservation, error) {
	q := reservationSelect + " WHERE r.id=$1"
	if r.inTx {
		q += " FOR UPDATE OF r"
	}
	return scanReservation(r.q.QueryRow(ctx, q, id))
}

func (r *reservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE reservations
		    SET reservation_date=$1, reservation_time=$2, number_of_guests=$3, status=$4, updated_at=now()
		  WHERE id=$5`,
		res.Date.Time, string(res.Time), res.Guests, string(res.Status), res.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrTableTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	got, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = got
	return nil
}

func (r *reservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, int, error) {
	where, args := reservationWhere(f)
	var total int
	if err := r.q.QueryRow(ctx,
		"SELECT COUNT(*) FROM reservations r JOIN customers c ON c.id = r.customer_id"+where,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	n := len(args)
	q := reservationSelect + where +
		fmt.Sprintf(" ORDER BY r.reservation_date DESC, r.reservation_time DESC, r.id DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	rows, err := r.q.Query(ctx, q, append(args, f.PerPage, f.Offset())...)
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

func reservationWhere(f model.ReservationFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != "" {
		add("r.status=$%d", string(f.Status))
	}
	if f.Date != nil {
		add("r.reservation_date=$%d", f.Date.Time)
	}
	if f.CustomerEmail != "" {
		add("c.email=$%d", model.NormalizeEmail(f.CustomerEmail))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
