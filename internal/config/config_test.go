package config

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "hello")
	t.Setenv("X_INT", "42")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_DUR", "90s")
	t.Setenv("X_BAD", "not-a-number")

	if got := envStr("X_STR", "d"); got != "hello" {
		t.Fatalf("envStr: got %q", got)
	}
	if got := envStr("X_MISSING", "d"); got != "d" {
		t.Fatalf("envStr default: got %q", got)
	}
	if got := envInt("X_INT", 7); got != 42 {
		t.Fatalf("envInt: got %d", got)
	}
	if got := envInt("X_BAD", 7); got != 7 {
		t.Fatalf("envInt fallback: got %d", got)
	}
	if got := envBool("X_BOOL", false); !got {
		t.Fatalf("envBool: got false")
	}
	if got := envDur("X_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("envDur: got %v", got)
	}
	if got := envDur("X_BAD", time.Second); got != time.Second {
		t.Fatalf("envDur fallback: got %v", got)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "reservations")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("INTERNAL_API_KEY", "svc-key")
	t.Setenv("HOLD_INITIAL", "15m")
	t.Setenv("HOLD_MAX_SEATS", "6")

	cfg := Load()
	if cfg.Port != "8080" || cfg.DBName != "reservations" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.InitialHold != 15*time.Minute {
		t.Fatalf("expected 15m initial hold, got %v", cfg.InitialHold)
	}
	if cfg.ExtensionIncrement != 5*time.Minute {
		t.Fatalf("expected default extension increment, got %v", cfg.ExtensionIncrement)
	}
	if cfg.MaxSeats != 6 {
		t.Fatalf("expected max seats 6, got %d", cfg.MaxSeats)
	}
}
