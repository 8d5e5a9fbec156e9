package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/showtix/concert-reservation/internal/model"
)

const reservationColumns = "id,user_id,concert_id,canceled,datetime,created_at,updated_at"

// ReservationRepo owns the seat-accounting writes.  Reserving and
// cancelling each run in a single transaction built around conditional
// UPDATEs on the concert's remain_seat counter, so two concurrent
// requests for the last seat can never both succeed.
type ReservationRepo struct{ db *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationDetail is a reservation row joined with its user and
// concert for the admin history listing.  Concert fields are pointers
// because the concert may have been deleted after the reservation was
// made.
type ReservationDetail struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"user_id"`
	ConcertID   uint64     `json:"concert_id"`
	Canceled    bool       `json:"canceled"`
	Datetime    time.Time  `json:"datetime"`
	CreatedAt   time.Time  `json:"created_at"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	ConcertName *string    `json:"concert_name,omitempty"`
	ConcertDate *time.Time `json:"concert_date,omitempty"`
}

// Concert loads a concert row, mapping absence to model.ErrConcertNotFound.
func (r *ReservationRepo) Concert(ctx context.Context, id uint64) (model.Concert, error) {
	var c model.Concert
	err := scanConcert(r.db.QueryRowContext(ctx,
		"SELECT "+concertColumns+" FROM concerts WHERE id=? LIMIT 1", id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Concert{}, model.ErrConcertNotFound
	}
	return c, err
}

// ActiveReservation returns the single non-canceled reservation for the
// pair, or model.ErrReservationNotFound when none exists.
func (r *ReservationRepo) ActiveReservation(ctx context.Context, userID, concertID uint64) (model.Reservation, error) {
	var res model.Reservation
	err := scanReservation(r.db.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id=? AND concert_id=? AND canceled=0 LIMIT 1",
		userID, concertID), &res)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, model.ErrReservationNotFound
	}
	return res, err
}

// CreateReservation claims one seat and inserts the reservation row in
// one transaction.  The decrement is conditional on remain_seat > 0 and
// the duplicate check re-runs under a row lock, so the pre-checks done
// by the service cannot be raced between read and write.  Returns
// model.ErrNoSeatsAvailable or model.ErrAlreadyReserved when the
// transaction loses such a race.
func (r *ReservationRepo) CreateReservation(ctx context.Context, userID, concertID uint64, at time.Time) (model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Reservation{}, err
	}
	defer tx.Rollback()

	var existing uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM reservations WHERE user_id=? AND concert_id=? AND canceled=0 LIMIT 1 FOR UPDATE",
		userID, concertID).Scan(&existing)
	switch {
	case err == nil:
		return model.Reservation{}, model.ErrAlreadyReserved
	case !errors.Is(err, sql.ErrNoRows):
		return model.Reservation{}, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE concerts SET remain_seat = remain_seat - 1 WHERE id=? AND remain_seat > 0", concertID)
	if err != nil {
		return model.Reservation{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Reservation{}, err
	}
	if n == 0 {
		return model.Reservation{}, model.ErrNoSeatsAvailable
	}

	ins, err := tx.ExecContext(ctx,
		"INSERT INTO reservations (user_id, concert_id, canceled, datetime) VALUES (?,?,0,?)",
		userID, concertID, at.UTC())
	if err != nil {
		return model.Reservation{}, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return model.Reservation{}, err
	}
	var row model.Reservation
	if err := scanReservation(tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=?", id), &row); err != nil {
		return model.Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, err
	}
	return row, nil
}

// CancelReservation flips the canceled flag and, when restoreSeat is
// set, gives the seat back to the concert in the same transaction.  The
// increment is capped at the total capacity so remain_seat never
// exceeds seat.  restoreSeat is false when the concert row no longer
// exists; the cancellation still succeeds for such orphans.
func (r *ReservationRepo) CancelReservation(ctx context.Context, reservationID, concertID uint64, restoreSeat bool) (model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Reservation{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE reservations SET canceled=1 WHERE id=? AND canceled=0", reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Reservation{}, err
	}
	if n == 0 {
		// Lost a race with another cancel for the same row.
		return model.Reservation{}, model.ErrReservationNotFound
	}

	if restoreSeat {
		if _, err := tx.ExecContext(ctx,
			"UPDATE concerts SET remain_seat = remain_seat + 1 WHERE id=? AND remain_seat < seat",
			concertID); err != nil {
			return model.Reservation{}, err
		}
	}

	var row model.Reservation
	if err := scanReservation(tx.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id=?", reservationID), &row); err != nil {
		return model.Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Reservation{}, err
	}
	return row, nil
}

// ListByUser returns every reservation row for a user, active and
// canceled alike, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE user_id=? ORDER BY id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListAll returns every reservation system-wide, newest first, with the
// owning user and (when still present) concert attached.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.user_id, r.concert_id, r.canceled, r.datetime, r.created_at,
	                  u.username, u.email, c.name, c.date
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           LEFT JOIN concerts c ON c.id = r.concert_id
	           ORDER BY r.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var (
			d           ReservationDetail
			concertName sql.NullString
			concertDate sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.ConcertID, &d.Canceled, &d.Datetime,
			&d.CreatedAt, &d.Username, &d.Email, &concertName, &concertDate); err != nil {
			return nil, err
		}
		if concertName.Valid {
			name := concertName.String
			d.ConcertName = &name
		}
		if concertDate.Valid {
			date := concertDate.Time
			d.ConcertDate = &date
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountActive counts non-canceled reservations for a concert.
func (r *ReservationRepo) CountActive(ctx context.Context, concertID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE concert_id=? AND canceled=0", concertID).Scan(&n)
	return n, err
}

// Stats aggregates the reservation counters and the capacity sum across
// all concerts.  TotalSeats sums `seat`, not `remain_seat`.
func (r *ReservationRepo) Stats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(canceled = 0), 0),
		       COALESCE(SUM(canceled = 1), 0)
		FROM reservations`).Scan(&s.TotalReservations, &s.Reserved, &s.Cancelled)
	if err != nil {
		return model.Stats{}, err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(seat), 0) FROM concerts").Scan(&s.TotalSeats)
	if err != nil {
		return model.Stats{}, err
	}
	return s, nil
}

func scanReservation(s scanner, res *model.Reservation) error {
	return s.Scan(&res.ID, &res.UserID, &res.ConcertID, &res.Canceled,
		&res.Datetime, &res.CreatedAt, &res.UpdatedAt)
}
