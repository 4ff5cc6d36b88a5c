// Package config loads application configuration from environment
// variables. Pricing and package shape live here, not in handlers: the
// booking core receives them as plain values.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env            string // application environment (dev/test/prod)
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token TTL in minutes
	RefreshTTLDays int    // refresh token TTL in days
	BcryptCost     int    // bcrypt cost for password hashing

	SessionPriceCents uint32 // per-session price stamped onto new sessions
	PackagePriceCents uint32 // 8-session package price
	PackageSessions   uint8  // sessions per package (default 8)
	PackageDays       uint16 // package validity in days (default 90)

	ReminderInterval time.Duration // reminder scan cadence (default 15m)
	NotifyTimeout    time.Duration // per-dispatch timeout for notifications

	ResendAPIKey string // Resend API key; empty switches to the noop sender
	EmailFrom    string // From address for outbound mail
	AdminEmail   string // studio admin address for booking-received mail
}

// Load reads configuration from the environment. Required variables are
// enforced by must(); optional ones fall back to defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		SessionPriceCents: uint32(envInt("SESSION_PRICE_CENTS", 3500)),
		PackagePriceCents: uint32(envInt("PACKAGE_PRICE_CENTS", 25000)),
		PackageSessions:   uint8(envInt("PACKAGE_SESSIONS", 8)),
		PackageDays:       uint16(envInt("PACKAGE_DAYS", 90)),

		ReminderInterval: envDur("REMINDER_INTERVAL", 15*time.Minute),
		NotifyTimeout:    envDur("NOTIFY_TIMEOUT", 10*time.Second),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    envStr("EMAIL_FROM", "Studio <noreply@localhost>"),
		AdminEmail:   envStr("ADMIN_EMAIL", ""),
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

// mustInt is like must() but converts to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
