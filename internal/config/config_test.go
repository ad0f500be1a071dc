package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.BookingWindowDays != 30 {
		t.Errorf("BookingWindowDays = %d, want 30", cfg.BookingWindowDays)
	}
	if cfg.TourCacheTTL != 5*time.Minute {
		t.Errorf("TourCacheTTL = %v, want 5m", cfg.TourCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BOOKING_WINDOW_DAYS", "14")
	t.Setenv("TOUR_CACHE_TTL", "90s")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.BookingWindowDays != 14 {
		t.Errorf("BookingWindowDays = %d, want 14", cfg.BookingWindowDays)
	}
	if cfg.TourCacheTTL != 90*time.Second {
		t.Errorf("TourCacheTTL = %v, want 90s", cfg.TourCacheTTL)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS should be true")
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("CORSAllowedOrigins = %v, want 2 entries", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Errorf("unexpected origin %q", cfg.CORSAllowedOrigins[1])
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("BOOKING_WINDOW_DAYS", "not-a-number")
	t.Setenv("TOUR_CACHE_TTL", "soon")

	cfg := Load()

	if cfg.BookingWindowDays != 30 {
		t.Errorf("BookingWindowDays = %d, want fallback 30", cfg.BookingWindowDays)
	}
	if cfg.TourCacheTTL != 5*time.Minute {
		t.Errorf("TourCacheTTL = %v, want fallback 5m", cfg.TourCacheTTL)
	}
}
