// Package handler contains the HTTP handlers.  Handlers accept small
// store interfaces so tests can substitute in-memory fakes; the
// concrete repositories satisfy them.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/showtix/concert-reservation/internal/model"
)

// getUserID extracts the authenticated user id stashed by the JWT
// middleware.  JWT numeric claims decode as float64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// writeError maps the shared sentinel errors onto the HTTP taxonomy:
// absent entities become 404, business-rule violations 400, duplicate
// accounts 409.  Anything else is a store fault and surfaces as 500.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrConcertNotFound),
		errors.Is(err, model.ErrReservationNotFound),
		errors.Is(err, model.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrPastConcert),
		errors.Is(err, model.ErrAlreadyReserved),
		errors.Is(err, model.ErrNoSeatsAvailable):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrUserExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
