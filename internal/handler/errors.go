package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
)

// statusByCode maps the engine's stable error codes onto HTTP statuses.
var statusByCode = map[string]int{
	"INVALID_INPUT":          http.StatusBadRequest,
	"TOO_MANY_SEATS":         http.StatusBadRequest,
	"DUPLICATE_RESERVATION":  http.StatusConflict,
	"SEATS_NOT_FOUND":        http.StatusNotFound,
	"SEATS_UNAVAILABLE":      http.StatusConflict,
	"NOT_FOUND":              http.StatusNotFound,
	"PERMISSION_DENIED":      http.StatusForbidden,
	"RESERVATION_INACTIVE":   http.StatusConflict,
	"RESERVATION_EXPIRED":    http.StatusGone,
	"MAX_EXTENSIONS_REACHED": http.StatusConflict,
	"ALREADY_INACTIVE":       http.StatusConflict,
	"INTERNAL_ERROR":         http.StatusInternalServerError,
}

// writeError renders an engine error as JSON with its stable code.
// Anything without a code has already been logged by the engine and
// surfaces as INTERNAL_ERROR.
func writeError(c echo.Context, err error) error {
	code := reservation.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := reservation.ErrInternal.Message
	var re *reservation.Error
	if errors.As(err, &re) {
		msg = re.Message
	}
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}
