package model

import "time"

// Reservation records one user's claim on one seat for one concert.
// Rows are never deleted: cancellation flips the Canceled flag, leaving
// an append-only audit trail per (user, concert) pair.  At most one row
// with Canceled == false may exist for a given pair at any time.
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	ConcertID uint64    // reservations.concert_id
	Canceled  bool      // reservations.canceled
	Datetime  time.Time // reservations.datetime
	CreatedAt time.Time // reservations.created_at
	UpdatedAt time.Time // reservations.updated_at
}

// Stats aggregates booking numbers for the admin dashboard.  TotalSeats
// is the sum of every concert's total capacity, not of the remaining
// counters.
type Stats struct {
	TotalReservations int64 `json:"total_reservations"`
	Reserved          int64 `json:"reserved"`
	Cancelled         int64 `json:"cancelled"`
	TotalSeats        int64 `json:"total_seats"`
}
