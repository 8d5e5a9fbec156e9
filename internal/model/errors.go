// Sentinel errors shared by the repository and service layers.  Handlers
// compare against these with errors.Is to pick the HTTP status: not-found
// values map to 404, business-rule violations to 400 and duplicate
// accounts to 409.
package model

import "errors"

var (
	// ErrConcertNotFound is returned when a referenced concert row is absent.
	ErrConcertNotFound = errors.New("concert not found")

	// ErrReservationNotFound is returned when no active reservation exists
	// for a (user, concert) pair, including when it was already cancelled.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrUserNotFound is returned when a user lookup by id comes up empty.
	ErrUserNotFound = errors.New("user not found")

	// ErrPastConcert rejects reserving or cancelling a concert whose date
	// lies strictly in the past.
	ErrPastConcert = errors.New("concert date is in the past")

	// ErrAlreadyReserved rejects a second active reservation for the same
	// (user, concert) pair.
	ErrAlreadyReserved = errors.New("user already reserved this concert")

	// ErrNoSeatsAvailable rejects reserving a concert with no remaining
	// seats.  It is also returned when the conditional seat decrement
	// loses a race and affects zero rows.
	ErrNoSeatsAvailable = errors.New("no seats available")

	// ErrUserExists is returned when registration hits the username or
	// email uniqueness constraint.
	ErrUserExists = errors.New("username or email already exists")
)
