package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/concert-reservation/internal/model"
	"github.com/showtix/concert-reservation/internal/service"
)

// ReservationHandler exposes seat booking, cancellation and the
// reservation history endpoints on top of the reservation service.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc}
}

type reserveReq struct {
	UserID    uint64 `json:"user_id"`
	ConcertID uint64 `json:"concert_id"`
	Datetime  string `json:"datetime"` // optional RFC3339; server time when empty
}

type reservationResp struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	ConcertID uint64    `json:"concert_id"`
	Canceled  bool      `json:"canceled"`
	Datetime  time.Time `json:"datetime"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
	return reservationResp{
		ID:        r.ID,
		UserID:    r.UserID,
		ConcertID: r.ConcertID,
		Canceled:  r.Canceled,
		Datetime:  r.Datetime,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Reserve handles POST /reservations: claim one seat on a concert for
// a user.  The service reports failures in a fixed precedence: unknown
// concert, past concert, duplicate reservation, sold out.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.ConcertID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and concert_id are required"})
	}
	var at *time.Time
	if req.Datetime != "" {
		t, err := time.Parse(time.RFC3339, req.Datetime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "datetime must be an RFC3339 timestamp"})
		}
		at = &t
	}

	res, err := h.Svc.Reserve(c.Request().Context(), req.UserID, req.ConcertID, at)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// Cancel handles DELETE /reservations/:userId/:concertId and returns
// the canceled row.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	concertID, ok := pathID(c, "concertId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}

	res, err := h.Svc.Cancel(c.Request().Context(), userID, concertID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// UserHistory handles GET /reservations/user/:userId: every row for
// the user, canceled ones included.
func (h *ReservationHandler) UserHistory(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	rows, err := h.Svc.UserHistory(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]reservationResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Count handles GET /reservations/count/:concertId: active
// reservations for one concert.
func (h *ReservationHandler) Count(c echo.Context) error {
	concertID, ok := pathID(c, "concertId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	n, err := h.Svc.ReservationCount(c.Request().Context(), concertID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"concert_id": concertID, "count": n})
}

// AllHistory handles GET /reservations/admin/all: every reservation
// system-wide, newest first, with user and concert details.
func (h *ReservationHandler) AllHistory(c echo.Context) error {
	rows, err := h.Svc.AllHistory(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Stats handles GET /reservations/admin/stats.
func (h *ReservationHandler) Stats(c echo.Context) error {
	stats, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
