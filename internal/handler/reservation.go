package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sethkline/studio-scheduler-sub004/internal/middleware"
	"github.com/sethkline/studio-scheduler-sub004/internal/reservation"
)

// ReservationHandler exposes the hold protocol over HTTP.  Session
// authentication has already happened in middleware; every mutating
// endpoint reads the verified session id from the context so ownership
// checks never trust a body-supplied value alone.
type ReservationHandler struct {
	Manager *reservation.Manager
}

// NewReservationHandler constructs the handler.
func NewReservationHandler(m *reservation.Manager) *ReservationHandler {
	if m == nil {
		panic("nil manager passed to NewReservationHandler")
	}
	return &ReservationHandler{Manager: m}
}

// Reserve handles POST /v1/events/:id/reservations.  The body carries
// the requested seat ids and optional contact details; a successful
// response returns the bearer token, deadline, seat count and total.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	sid := middleware.SessionID(c)
	if sid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "invalid event id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
		Email   *string  `json:"email"`
		Phone   *string  `json:"phone"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "invalid request body"})
	}

	res, err := h.Manager.Reserve(c.Request().Context(), reservation.ReserveInput{
		EventID:   eventID,
		SeatIDs:   body.SeatIDs,
		SessionID: sid,
		Email:     body.Email,
		Phone:     body.Phone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id":     res.ReservationID,
		"token":              res.Token,
		"expires_at":         res.ExpiresAt.Format(time.RFC3339),
		"seat_count":         res.SeatCount,
		"total_amount_cents": res.TotalAmountCents,
	})
}

// Extend handles POST /v1/reservations/extend.  The deadline resets
// from the call time; up to three extensions are honoured.
func (h *ReservationHandler) Extend(c echo.Context) error {
	sid := middleware.SessionID(c)
	if sid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "invalid request body"})
	}
	res, err := h.Manager.Extend(c.Request().Context(), body.Token, sid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"expires_at":           res.ExpiresAt.Format(time.RFC3339),
		"extensions_remaining": res.ExtensionsRemaining,
	})
}

// Release handles POST /v1/reservations/release.  It accepts either the
// bearer token or the reservation id; releasing twice returns
// ALREADY_INACTIVE.
func (h *ReservationHandler) Release(c echo.Context) error {
	sid := middleware.SessionID(c)
	if sid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Token         string `json:"token"`
		ReservationID string `json:"reservation_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "invalid request body"})
	}
	res, err := h.Manager.Release(c.Request().Context(),
		reservation.Ref{Token: body.Token, ReservationID: body.ReservationID}, sid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seats_released": res.SeatsReleased,
	})
}

// Check handles GET /v1/reservations/check?token=...|reservation_id=...
// Possession of the token is sufficient to read the snapshot.
func (h *ReservationHandler) Check(c echo.Context) error {
	ref := reservation.Ref{
		Token:         c.QueryParam("token"),
		ReservationID: c.QueryParam("reservation_id"),
	}
	res, err := h.Manager.Check(c.Request().Context(), ref)
	if err != nil {
		return writeError(c, err)
	}
	seats := make([]echo.Map, 0, len(res.Seats))
	for _, s := range res.Seats {
		seats = append(seats, seatJSON(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id":         res.ReservationID,
		"is_active":              res.IsActive,
		"expires_at":             res.ExpiresAt.Format(time.RFC3339),
		"time_remaining_seconds": int(res.TimeRemaining / time.Second),
		"seats":                  seats,
		"seat_count":             res.SeatCount,
		"total_amount_cents":     res.TotalAmountCents,
		"extensions_remaining":   res.ExtensionsRemaining,
	})
}

// Commit handles POST /v1/reservations/commit.  Only the checkout
// collaborator calls this, after funds are captured; the route is
// guarded by InternalAuth.  It is the sole path from RESERVED to SOLD.
func (h *ReservationHandler) Commit(c echo.Context) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "INVALID_INPUT", "message": "invalid request body"})
	}
	res, err := h.Manager.Commit(c.Request().Context(), body.Token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id":     res.ReservationID,
		"seat_count":         res.SeatCount,
		"total_amount_cents": res.TotalAmountCents,
	})
}

func seatJSON(s reservation.SeatView) echo.Map {
	return echo.Map{
		"seat_id":         s.SeatID,
		"section":         s.Section,
		"row_label":       s.RowLabel,
		"seat_number":     s.SeatNumber,
		"seat_type":       s.SeatType,
		"handicap_access": s.HandicapAccess,
		"status":          s.Status,
		"price_cents":     s.PriceCents,
	}
}
