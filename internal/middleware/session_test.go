package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sethkline/studio-scheduler-sub004/internal/session"
)

type staticVerifier struct {
	id  string
	err error
}

func (v staticVerifier) Verify(raw string) (string, error) {
	return v.id, v.err
}

func runWith(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, string) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var seen string
	handler := mw(func(c echo.Context) error {
		seen = SessionID(c)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, seen
}

func TestSessionAuth(t *testing.T) {
	t.Parallel()

	t.Run("passes a verified session through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec, sid := runWith(SessionAuth(staticVerifier{id: "sess-1"}), req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if sid != "sess-1" {
			t.Fatalf("expected session id in context, got %q", sid)
		}
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec, _ := runWith(SessionAuth(staticVerifier{id: "sess-1"}), req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects a failed verification", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer bad-token")
		rec, _ := runWith(SessionAuth(staticVerifier{err: session.ErrInvalid}), req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestInternalAuth(t *testing.T) {
	t.Parallel()

	t.Run("accepts the shared key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Internal-Key", "svc-key")
		rec, _ := runWith(InternalAuth("svc-key"), req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Internal-Key", "nope")
		rec, _ := runWith(InternalAuth("svc-key"), req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("rejects when no key is configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Internal-Key", "")
		rec, _ := runWith(InternalAuth(""), req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 with empty configured key, got %d", rec.Code)
		}
	})
}

func TestSessionID_WithoutAuth(t *testing.T) {
	t.Parallel()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := SessionID(c); got != "" {
		t.Fatalf("expected empty session id, got %q", got)
	}
}
