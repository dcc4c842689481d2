package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
)

// SeatHandler serves the public seat map and the suggestion endpoint.
type SeatHandler struct {
	Manager   *reservation.Manager
	Suggester *reservation.Suggester
}

// NewSeatHandler constructs the handler.
func NewSeatHandler(m *reservation.Manager, s *reservation.Suggester) *SeatHandler {
	return &SeatHandler{Manager: m, Suggester: s}
}

// Map handles GET /v1/events/:id/seats.  Statuses are effective as of
// the call time, so a lapsed hold already reads as AVAILABLE.
func (h *SeatHandler) Map(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "invalid event id"})
	}
	seats, err := h.Manager.Seats(c.Request().Context(), eventID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]echo.Map, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatJSON(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id": eventID,
		"seats":    out,
	})
}

// Suggest handles GET /v1/events/:id/suggest.  Query parameters:
// count (required), prefer_center, keep_together, handicap_access.
func (h *SeatHandler) Suggest(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "invalid event id"})
	}
	count, err := strconv.Atoi(c.QueryParam("count"))
	if err != nil || count < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "count must be a positive integer"})
	}
	in := reservation.SuggestInput{
		EventID:               eventID,
		Count:                 count,
		PreferCenter:          boolParam(c, "prefer_center", true),
		KeepTogether:          boolParam(c, "keep_together", true),
		RequireHandicapAccess: boolParam(c, "handicap_access", false),
	}
	sug, err := h.Suggester.Suggest(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	seats := make([]echo.Map, 0, len(sug.Seats))
	for _, s := range sug.Seats {
		seats = append(seats, seatJSON(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":            sug.Success,
		"ideal_match":        sug.IdealMatch,
		"available_count":    sug.AvailableCount,
		"seats":              seats,
		"total_amount_cents": sug.TotalAmountCents,
	})
}

func boolParam(c echo.Context, name string, def bool) bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
