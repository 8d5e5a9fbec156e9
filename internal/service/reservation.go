// Package service implements the reservation business rules on top of
// a storage interface.  The service performs the ordered pre-checks
// that give each failure its observable error, while the store is
// responsible for making the seat decrement/increment atomic so the
// checks cannot be raced between read and write.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/showtix/concert-reservation/internal/clock"
	"github.com/showtix/concert-reservation/internal/model"
	"github.com/showtix/concert-reservation/internal/queue"
	"github.com/showtix/concert-reservation/internal/repository"
)

// Store is the persistence surface the reservation rules need.  It is
// implemented by repository.ReservationRepo and by the in-memory fake
// used in tests.  CreateReservation and CancelReservation must be
// atomic: the seat-counter mutation and the reservation row change
// either both happen or neither does, and the counter update is
// conditional (no seat below zero, no seat above total).
type Store interface {
	Concert(ctx context.Context, id uint64) (model.Concert, error)
	ActiveReservation(ctx context.Context, userID, concertID uint64) (model.Reservation, error)
	CreateReservation(ctx context.Context, userID, concertID uint64, at time.Time) (model.Reservation, error)
	CancelReservation(ctx context.Context, reservationID, concertID uint64, restoreSeat bool) (model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListAll(ctx context.Context) ([]repository.ReservationDetail, error)
	CountActive(ctx context.Context, concertID uint64) (int64, error)
	Stats(ctx context.Context) (model.Stats, error)
}

// EventPublisher emits a reservation lifecycle event.  Publishing is
// best-effort; errors are ignored by the service.
type EventPublisher func(ctx context.Context, ev queue.ReservationEvent) error

// ReservationService applies the booking rules: one active reservation
// per (user, concert) pair, no booking of past or full concerts, and
// cancellation that restores the seat counter.
type ReservationService struct {
	store   Store
	clock   clock.Clock
	publish EventPublisher // nil disables event publishing
}

// NewReservationService wires the service.  publish may be nil when no
// broker is configured.
func NewReservationService(store Store, clk clock.Clock, publish EventPublisher) *ReservationService {
	if store == nil {
		panic("nil store passed to NewReservationService")
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &ReservationService{store: store, clock: clk, publish: publish}
}

// Reserve claims one seat on a concert for a user.  The checks run in a
// fixed order so callers observe a stable error precedence: concert
// existence, then timing, then duplicate reservation, then capacity.
// The final claim is atomic in the store, so losing a race for the last
// seat surfaces as model.ErrNoSeatsAvailable even after the capacity
// pre-check passed.
func (s *ReservationService) Reserve(ctx context.Context, userID, concertID uint64, at *time.Time) (model.Reservation, error) {
	concert, err := s.store.Concert(ctx, concertID)
	if err != nil {
		return model.Reservation{}, err
	}
	now := s.clock.Now()
	if concert.Started(now) {
		return model.Reservation{}, model.ErrPastConcert
	}
	if _, err := s.store.ActiveReservation(ctx, userID, concertID); err == nil {
		return model.Reservation{}, model.ErrAlreadyReserved
	} else if !errors.Is(err, model.ErrReservationNotFound) {
		return model.Reservation{}, err
	}
	if concert.RemainSeat == 0 {
		return model.Reservation{}, model.ErrNoSeatsAvailable
	}

	when := now
	if at != nil {
		when = at.UTC()
	}
	res, err := s.store.CreateReservation(ctx, userID, concertID, when)
	if err != nil {
		return model.Reservation{}, err
	}
	s.emit(ctx, queue.ActionConfirmed, res, concert.Name, concert.RemainSeat-1)
	return res, nil
}

// Cancel flags the pair's active reservation as canceled and returns
// the seat to the concert.  A concert that has since been deleted is
// tolerated: the flag still flips, only the seat restore is skipped.
// Cancelling after the concert date is rejected.
func (s *ReservationService) Cancel(ctx context.Context, userID, concertID uint64) (model.Reservation, error) {
	active, err := s.store.ActiveReservation(ctx, userID, concertID)
	if err != nil {
		return model.Reservation{}, err
	}

	concert, err := s.store.Concert(ctx, concertID)
	switch {
	case err == nil:
		if concert.Started(s.clock.Now()) {
			return model.Reservation{}, model.ErrPastConcert
		}
		res, err := s.store.CancelReservation(ctx, active.ID, concertID, true)
		if err != nil {
			return model.Reservation{}, err
		}
		s.emit(ctx, queue.ActionCancelled, res, concert.Name, concert.RemainSeat+1)
		return res, nil
	case errors.Is(err, model.ErrConcertNotFound):
		// Orphaned reservation: no counter left to restore.
		res, err := s.store.CancelReservation(ctx, active.ID, concertID, false)
		if err != nil {
			return model.Reservation{}, err
		}
		s.emit(ctx, queue.ActionCancelled, res, "", 0)
		return res, nil
	default:
		return model.Reservation{}, err
	}
}

// UserHistory returns every reservation row for a user, including
// canceled ones.
func (s *ReservationService) UserHistory(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return s.store.ListByUser(ctx, userID)
}

// AllHistory returns every reservation system-wide, newest first, with
// user and concert details attached.
func (s *ReservationService) AllHistory(ctx context.Context) ([]repository.ReservationDetail, error) {
	return s.store.ListAll(ctx)
}

// ReservationCount counts the active reservations for a concert.
func (s *ReservationService) ReservationCount(ctx context.Context, concertID uint64) (int64, error) {
	return s.store.CountActive(ctx, concertID)
}

// Stats aggregates booking statistics for the admin dashboard.
func (s *ReservationService) Stats(ctx context.Context) (model.Stats, error) {
	return s.store.Stats(ctx)
}

func (s *ReservationService) emit(ctx context.Context, action string, res model.Reservation, concertName string, remain uint32) {
	if s.publish == nil {
		return
	}
	_ = s.publish(ctx, queue.ReservationEvent{
		Action:        action,
		ReservationID: res.ID,
		UserID:        res.UserID,
		ConcertID:     res.ConcertID,
		ConcertName:   concertName,
		RemainSeat:    remain,
		OccurredAt:    s.clock.Now().Format(time.RFC3339),
	})
}
