package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/concert-reservation/internal/model"
	"github.com/showtix/concert-reservation/internal/repository"
)

// ConcertStore is the catalog persistence surface used by the concert
// endpoints.
type ConcertStore interface {
	Create(ctx context.Context, name, description string, seat, remainSeat uint32, date time.Time) (model.Concert, error)
	List(ctx context.Context) ([]model.Concert, error)
	GetByID(ctx context.Context, id uint64) (model.Concert, error)
	Update(ctx context.Context, id uint64, upd repository.ConcertUpdate) (model.Concert, error)
	Delete(ctx context.Context, id uint64) error
}

// ConcertHandler exposes the admin catalog CRUD and the public listing.
type ConcertHandler struct {
	Concerts ConcertStore
}

func NewConcertHandler(concerts ConcertStore) *ConcertHandler {
	if concerts == nil {
		panic("nil store passed to NewConcertHandler")
	}
	return &ConcertHandler{Concerts: concerts}
}

type createConcertReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Seat        int64  `json:"seat"`
	RemainSeat  *int64 `json:"remain_seat"`
	Date        string `json:"date"`
}

type updateConcertReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Seat        *int64  `json:"seat"`
	RemainSeat  *int64  `json:"remain_seat"`
	Date        *string `json:"date"`
}

type concertResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Seat        uint32    `json:"seat"`
	RemainSeat  uint32    `json:"remain_seat"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toConcertResp(c model.Concert) concertResp {
	return concertResp{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Seat:        c.Seat,
		RemainSeat:  c.RemainSeat,
		Date:        c.Date,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Create handles POST /concerts.  The seat count must be positive and
// the date an RFC3339 timestamp; remain_seat defaults to seat when
// omitted.
func (h *ConcertHandler) Create(c echo.Context) error {
	var req createConcertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Seat <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat must be a positive integer"})
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be an RFC3339 timestamp"})
	}
	remain := req.Seat
	if req.RemainSeat != nil {
		if *req.RemainSeat < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "remain_seat must not be negative"})
		}
		remain = *req.RemainSeat
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	concert, err := h.Concerts.Create(ctx, req.Name, req.Description, uint32(req.Seat), uint32(remain), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toConcertResp(concert))
}

// List handles GET /concerts: every concert, no filtering, no paging.
func (h *ConcertHandler) List(c echo.Context) error {
	concerts, err := h.Concerts.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]concertResp, 0, len(concerts))
	for _, concert := range concerts {
		out = append(out, toConcertResp(concert))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /concerts/:id.
func (h *ConcertHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	concert, err := h.Concerts.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toConcertResp(concert))
}

// Update handles PATCH /concerts/:id.  Supplied fields are merged over
// the stored record; omitted fields keep their values.
func (h *ConcertHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	var req updateConcertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var upd repository.ConcertUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		upd.Name = &name
	}
	upd.Description = req.Description
	if req.Seat != nil {
		if *req.Seat <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat must be a positive integer"})
		}
		seat := uint32(*req.Seat)
		upd.Seat = &seat
	}
	if req.RemainSeat != nil {
		if *req.RemainSeat < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "remain_seat must not be negative"})
		}
		remain := uint32(*req.RemainSeat)
		upd.RemainSeat = &remain
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be an RFC3339 timestamp"})
		}
		upd.Date = &date
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	concert, err := h.Concerts.Update(ctx, id, upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toConcertResp(concert))
}

// Delete handles DELETE /concerts/:id.  Reservations referencing the
// concert are left in place; cancellation tolerates the orphan.
func (h *ConcertHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid concert id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Concerts.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "concert deleted"})
}
