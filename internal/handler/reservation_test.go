package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showtix/concert-reservation/internal/clock"
	"github.com/showtix/concert-reservation/internal/model"
	"github.com/showtix/concert-reservation/internal/repository"
	"github.com/showtix/concert-reservation/internal/service"
)

// bookingStore is a minimal in-memory service.Store for exercising the
// reservation endpoints end to end without a database.
type bookingStore struct {
	concerts     map[uint64]model.Concert
	reservations map[uint64]model.Reservation
	nextID       uint64
}

func newBookingStore() *bookingStore {
	return &bookingStore{
		concerts:     make(map[uint64]model.Concert),
		reservations: make(map[uint64]model.Reservation),
		nextID:       1,
	}
}

func (s *bookingStore) Concert(_ context.Context, id uint64) (model.Concert, error) {
	c, ok := s.concerts[id]
	if !ok {
		return model.Concert{}, model.ErrConcertNotFound
	}
	return c, nil
}

func (s *bookingStore) ActiveReservation(_ context.Context, userID, concertID uint64) (model.Reservation, error) {
	for _, r := range s.reservations {
		if r.UserID == userID && r.ConcertID == concertID && !r.Canceled {
			return r, nil
		}
	}
	return model.Reservation{}, model.ErrReservationNotFound
}

func (s *bookingStore) CreateReservation(_ context.Context, userID, concertID uint64, at time.Time) (model.Reservation, error) {
	c, ok := s.concerts[concertID]
	if !ok || c.RemainSeat == 0 {
		return model.Reservation{}, model.ErrNoSeatsAvailable
	}
	c.RemainSeat--
	s.concerts[concertID] = c
	r := model.Reservation{ID: s.nextID, UserID: userID, ConcertID: concertID, Datetime: at}
	s.nextID++
	s.reservations[r.ID] = r
	return r, nil
}

func (s *bookingStore) CancelReservation(_ context.Context, reservationID, concertID uint64, restoreSeat bool) (model.Reservation, error) {
	r, ok := s.reservations[reservationID]
	if !ok || r.Canceled {
		return model.Reservation{}, model.ErrReservationNotFound
	}
	r.Canceled = true
	s.reservations[reservationID] = r
	if restoreSeat {
		if c, ok := s.concerts[concertID]; ok && c.RemainSeat < c.Seat {
			c.RemainSeat++
			s.concerts[concertID] = c
		}
	}
	return r, nil
}

func (s *bookingStore) ListByUser(_ context.Context, userID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for id := s.nextID; id > 0; id-- {
		if r, ok := s.reservations[id]; ok && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *bookingStore) ListAll(_ context.Context) ([]repository.ReservationDetail, error) {
	var out []repository.ReservationDetail
	for id := s.nextID; id > 0; id-- {
		if r, ok := s.reservations[id]; ok {
			out = append(out, repository.ReservationDetail{
				ID: r.ID, UserID: r.UserID, ConcertID: r.ConcertID, Canceled: r.Canceled,
			})
		}
	}
	return out, nil
}

func (s *bookingStore) CountActive(_ context.Context, concertID uint64) (int64, error) {
	var n int64
	for _, r := range s.reservations {
		if r.ConcertID == concertID && !r.Canceled {
			n++
		}
	}
	return n, nil
}

func (s *bookingStore) Stats(_ context.Context) (model.Stats, error) {
	st := model.Stats{}
	for _, r := range s.reservations {
		st.TotalReservations++
		if r.Canceled {
			st.Cancelled++
		} else {
			st.Reserved++
		}
	}
	for _, c := range s.concerts {
		st.TotalSeats += int64(c.Seat)
	}
	return st, nil
}

var bookingNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newReservationHandler(store *bookingStore) *ReservationHandler {
	svc := service.NewReservationService(store, clock.NewFixed(bookingNow), nil)
	return NewReservationHandler(svc)
}

func TestReserveEndpoint(t *testing.T) {
	store := newBookingStore()
	store.concerts[1] = model.Concert{ID: 1, Name: "Show", Seat: 50, RemainSeat: 50, Date: bookingNow.Add(time.Hour)}
	h := newReservationHandler(store)

	rec := doJSON(t, h.Reserve, http.MethodPost, "/reservations",
		`{"user_id":7,"concert_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp reservationResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.UserID)
	assert.Equal(t, uint64(1), resp.ConcertID)
	assert.False(t, resp.Canceled)
	assert.Equal(t, uint32(49), store.concerts[1].RemainSeat)
}

func TestReserveEndpointValidation(t *testing.T) {
	h := newReservationHandler(newBookingStore())

	rec := doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"concert_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.Reserve, http.MethodPost, "/reservations",
		`{"user_id":1,"concert_id":1,"datetime":"not-a-time"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReserveEndpointErrorMapping(t *testing.T) {
	store := newBookingStore()
	store.concerts[1] = model.Concert{ID: 1, Name: "Past", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(-time.Hour)}
	store.concerts[2] = model.Concert{ID: 2, Name: "Full", Seat: 10, RemainSeat: 0, Date: bookingNow.Add(time.Hour)}
	store.concerts[3] = model.Concert{ID: 3, Name: "Open", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(time.Hour)}
	h := newReservationHandler(store)

	// Unknown concert.
	rec := doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":1,"concert_id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Past concert.
	rec = doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":1,"concert_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Sold out.
	rec = doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":1,"concert_id":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Duplicate.
	rec = doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":1,"concert_id":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":1,"concert_id":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	store := newBookingStore()
	store.concerts[1] = model.Concert{ID: 1, Name: "Show", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(time.Hour)}
	h := newReservationHandler(store)

	rec := doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":5,"concert_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doConcert(t, h.Cancel, http.MethodDelete, "/reservations/5/1", "",
		"userId", "5", "concertId", "1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp reservationResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Canceled)
	assert.Equal(t, uint32(10), store.concerts[1].RemainSeat)
}

func TestCancelEndpointWithoutReservation(t *testing.T) {
	store := newBookingStore()
	store.concerts[1] = model.Concert{ID: 1, Name: "Show", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(time.Hour)}
	h := newReservationHandler(store)

	rec := doConcert(t, h.Cancel, http.MethodDelete, "/reservations/5/1", "",
		"userId", "5", "concertId", "1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCountEndpoint(t *testing.T) {
	store := newBookingStore()
	store.concerts[1] = model.Concert{ID: 1, Name: "Show", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(time.Hour)}
	h := newReservationHandler(store)

	for _, uid := range []string{"1", "2", "3"} {
		rec := doJSON(t, h.Reserve, http.MethodPost, "/reservations",
			`{"user_id":`+uid+`,"concert_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doConcert(t, h.Count, http.MethodGet, "/reservations/count/1", "",
		"concertId", "1")
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(3), out["count"])
}

func TestUserHistoryEndpoint(t *testing.T) {
	store := newBookingStore()
	store.concerts[1] = model.Concert{ID: 1, Name: "A", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(time.Hour)}
	store.concerts[2] = model.Concert{ID: 2, Name: "B", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(time.Hour)}
	h := newReservationHandler(store)

	doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":4,"concert_id":1}`)
	doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":4,"concert_id":2}`)
	doConcert(t, h.Cancel, http.MethodDelete, "/reservations/4/1", "",
		"userId", "4", "concertId", "1")

	rec := doConcert(t, h.UserHistory, http.MethodGet, "/reservations/user/4", "",
		"userId", "4")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []reservationResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
}

func TestStatsEndpoint(t *testing.T) {
	store := newBookingStore()
	store.concerts[1] = model.Concert{ID: 1, Name: "Show", Seat: 10, RemainSeat: 10, Date: bookingNow.Add(time.Hour)}
	h := newReservationHandler(store)

	doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":1,"concert_id":1}`)
	doJSON(t, h.Reserve, http.MethodPost, "/reservations", `{"user_id":2,"concert_id":1}`)
	doConcert(t, h.Cancel, http.MethodDelete, "/reservations/2/1", "",
		"userId", "2", "concertId", "1")

	rec := doConcert(t, h.Stats, http.MethodGet, "/reservations/admin/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st model.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, int64(2), st.TotalReservations)
	assert.Equal(t, int64(1), st.Reserved)
	assert.Equal(t, int64(1), st.Cancelled)
	assert.Equal(t, int64(10), st.TotalSeats)
}
