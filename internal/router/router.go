package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/sethkline/studio-scheduler-sub004/internal/handler"
	"github.com/sethkline/studio-scheduler-sub004/internal/middleware"
	"github.com/sethkline/studio-scheduler-sub004/internal/session"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated browse endpoints.  The seat
// map and the suggestion engine are read-only and safe for guests, so
// no session is required to call them.
func RegisterPublic(e *echo.Echo, s *handler.SeatHandler) {
	// Full seat map for an event with effective statuses.
	e.GET("/v1/events/:id/seats", s.Map)
	// Best-seat suggestions for a party of the requested size.
	e.GET("/v1/events/:id/suggest", s.Suggest)
}

// RegisterReservations registers the hold protocol.  Mutating routes
// sit behind session authentication and the shared rate limiter; the
// commit route is additionally restricted to internal callers holding
// the shared service key.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, v session.Verifier, internalKey string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.SessionAuth(v))
	if limiter != nil {
		g.Use(limiter)
	}
	// Place a hold on specific seats of an event.
	g.POST("/events/:id/reservations", h.Reserve)
	// Push the hold deadline forward, bounded by the extension cap.
	g.POST("/reservations/extend", h.Extend)
	// Give the seats back early.  Releasing twice is reported, not retried.
	g.POST("/reservations/release", h.Release)

	// Checking a reservation needs only the token, so it lives outside
	// the authenticated group.  Checkout pages poll it without a session.
	e.GET("/v1/reservations/check", h.Check)

	// Commit finalizes a paid hold into a sale.  Only the checkout
	// service calls it, authenticated by the internal key header.
	e.POST("/v1/reservations/commit", h.Commit, middleware.InternalAuth(internalKey))
}
