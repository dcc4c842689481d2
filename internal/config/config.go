// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Hold timings are fixed configuration
// constants at runtime: they bound the worst-case time inventory can be
// starved by an abandoned hold.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret   string // secret used to verify session tokens
	InternalKey string // shared key for the checkout collaborator's commit call

	InitialHold        time.Duration // hold granted by Reserve
	ExtensionIncrement time.Duration // hold granted by each Extend
	MaxSeats           int           // per-reservation seat limit
	SweepInterval      time.Duration // reaper sweep cadence

	AMQPURL string // broker URL for the audit trail (empty disables)
}

// Load reads configuration from environment variables.  Required
// variables are enforced by must(); optional ones fall back to the
// engine defaults.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:   must("JWT_SECRET"),
		InternalKey: must("INTERNAL_API_KEY"),

		InitialHold:        envDur("HOLD_INITIAL", 10*time.Minute),
		ExtensionIncrement: envDur("HOLD_EXTENSION", 5*time.Minute),
		MaxSeats:           envInt("HOLD_MAX_SEATS", 10),
		SweepInterval:      envDur("REAPER_INTERVAL", 30*time.Second),

		AMQPURL: envStr("RABBITMQ_URL", envStr("AMQP_URL", "")),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
