// Package middleware contains reusable HTTP middleware for the
// reservation API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sethkline/studio-scheduler-sub004/internal/session"
)

// sessionKey is where SessionAuth stores the verified session id in the
// echo context.
const sessionKey = "session_id"

// SessionAuth validates the Bearer credential on every request and
// injects the verified session id into the context.  Handlers behind it
// can rely on SessionID returning a non-empty value.
func SessionAuth(v session.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			sid, err := v.Verify(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session credential"})
			}
			c.Set(sessionKey, sid)
			return next(c)
		}
	}
}

// SessionID extracts the verified session id from the context, or ""
// when the request did not pass SessionAuth.
func SessionID(c echo.Context) string {
	if v := c.Get(sessionKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// InternalAuth guards collaborator-only endpoints (the checkout
// service's commit call) with a shared key presented in the
// X-Internal-Key header.
func InternalAuth(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" || c.Request().Header.Get("X-Internal-Key") != key {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
