package config

import (
	"os"
	"strings"
	"time"
)

// MigrateOnStart runs AutoMigrate when the server boots.
//
// Set via env:
// - MIGRATE_ON_START=true
func MigrateOnStart() bool {
	return boolFromEnv("MIGRATE_ON_START")
}

// PhoneRegion is the default region used to parse customer phone numbers.
//
// Set via env:
// - PHONE_REGION=VN (default)
func PhoneRegion() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_REGION")))
	if v == "" {
		return "VN"
	}
	return v
}

// CodeMintAttempts bounds how many times a header create re-mints its code after a
// primary key collision.
//
// Set via env:
// - CODE_MINT_ATTEMPTS=3 (default)
func CodeMintAttempts() int {
	n := intFromEnv("CODE_MINT_ATTEMPTS", 3)
	if n < 1 {
		return 1
	}
	return n
}

// CorsAllowedOrigins lists the origins accepted in production.
//
// Set via env:
// - CORS_ALLOWED_ORIGINS="https://a.example,https://b.example"
func CorsAllowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// RateLimit returns the per-client request budget and window, and whether limiting is on.
//
// Set via env:
// - RATE_LIMIT_ENABLED=true
// - RATE_LIMIT_MAX_REQUESTS=600
// - RATE_LIMIT_WINDOW_SECONDS=60
func RateLimit() (bool, int64, time.Duration) {
	limit := intFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)
	if limit <= 0 {
		limit = 600
	}
	windowSec := intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if windowSec <= 0 {
		windowSec = 60
	}
	return boolFromEnv("RATE_LIMIT_ENABLED"), int64(limit), time.Duration(windowSec) * time.Second
}

// IsProduction reports GO_ENV=production.
func IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production")
}
