package model

import "time"

// Concert is a listing users can reserve seats for.  Seat is the fixed
// total capacity set by an admin; RemainSeat is the count not yet
// claimed by an active reservation.  Reservations decrement RemainSeat
// and cancellations restore it, keeping 0 <= RemainSeat <= Seat.
type Concert struct {
	ID          uint64    // concerts.id
	Name        string    // concerts.name
	Description string    // concerts.description
	Seat        uint32    // concerts.seat
	RemainSeat  uint32    // concerts.remain_seat
	Date        time.Time // concerts.date
	CreatedAt   time.Time // concerts.created_at
	UpdatedAt   time.Time // concerts.updated_at
}

// Started reports whether the concert date lies strictly in the past
// relative to now.  Past concerts can neither be reserved nor have
// reservations cancelled.
func (c Concert) Started(now time.Time) bool {
	return c.Date.Before(now)
}
