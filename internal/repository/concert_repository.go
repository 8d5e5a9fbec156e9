// Package repository wraps *sql.DB with hand-written SQL for each
// aggregate.  Absent rows map onto the model sentinel errors so callers
// never see sql.ErrNoRows.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/showtix/concert-reservation/internal/model"
)

const concertColumns = "id,name,description,seat,remain_seat,date,created_at,updated_at"

// ConcertRepo manages rows in the `concerts` table.
type ConcertRepo struct{ db *sql.DB }

func NewConcertRepo(db *sql.DB) *ConcertRepo { return &ConcertRepo{db: db} }

// ConcertUpdate carries the optional fields of a PATCH request.  Nil
// pointers leave the stored value untouched; supplied values overwrite
// it with no cross-field re-validation, matching the shallow-merge
// update semantics of the catalog.
type ConcertUpdate struct {
	Name        *string
	Description *string
	Seat        *uint32
	RemainSeat  *uint32
	Date        *time.Time
}

// Create inserts a concert and returns the stored row.
func (r *ConcertRepo) Create(ctx context.Context, name, description string, seat, remainSeat uint32, date time.Time) (model.Concert, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO concerts (name, description, seat, remain_seat, date) VALUES (?,?,?,?,?)",
		name, description, seat, remainSeat, date.UTC())
	if err != nil {
		return model.Concert{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Concert{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// List returns every concert ordered by date, no pagination.
func (r *ConcertRepo) List(ctx context.Context) ([]model.Concert, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+concertColumns+" FROM concerts ORDER BY date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Concert, 0)
	for rows.Next() {
		var c model.Concert
		if err := scanConcert(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID returns a concert or model.ErrConcertNotFound.
func (r *ConcertRepo) GetByID(ctx context.Context, id uint64) (model.Concert, error) {
	var c model.Concert
	err := scanConcert(r.db.QueryRowContext(ctx,
		"SELECT "+concertColumns+" FROM concerts WHERE id=? LIMIT 1", id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Concert{}, model.ErrConcertNotFound
	}
	return c, err
}

// Update loads the concert, merges the supplied fields over it and
// writes the result back, all inside one transaction so concurrent
// seat-accounting updates are not clobbered between load and save.
func (r *ConcertRepo) Update(ctx context.Context, id uint64, upd ConcertUpdate) (model.Concert, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Concert{}, err
	}
	defer tx.Rollback()

	var c model.Concert
	err = scanConcert(tx.QueryRowContext(ctx,
		"SELECT "+concertColumns+" FROM concerts WHERE id=? FOR UPDATE", id), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Concert{}, model.ErrConcertNotFound
	}
	if err != nil {
		return model.Concert{}, err
	}
	if upd.Name != nil {
		c.Name = *upd.Name
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Seat != nil {
		c.Seat = *upd.Seat
	}
	if upd.RemainSeat != nil {
		c.RemainSeat = *upd.RemainSeat
	}
	if upd.Date != nil {
		c.Date = upd.Date.UTC()
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE concerts SET name=?, description=?, seat=?, remain_seat=?, date=? WHERE id=?",
		c.Name, c.Description, c.Seat, c.RemainSeat, c.Date, id); err != nil {
		return model.Concert{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Concert{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a concert.  Reservations referencing it are left in
// place; cancellation tolerates the orphan.
func (r *ConcertRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM concerts WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrConcertNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConcert(s scanner, c *model.Concert) error {
	return s.Scan(&c.ID, &c.Name, &c.Description, &c.Seat, &c.RemainSeat,
		&c.Date, &c.CreatedAt, &c.UpdatedAt)
}
