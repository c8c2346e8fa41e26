package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTPAddr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.HTTPAddr())
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("driver = %s", cfg.DatabaseDriver)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.RequestTimeout, cfg.ShutdownTimeout)
	}
	if cfg.BookingStartHour != 9 || cfg.BookingEndHour != 17 || cfg.BookingGranularity != 30 {
		t.Errorf("booking hours = [%d, %d) @ %dm", cfg.BookingStartHour, cfg.BookingEndHour, cfg.BookingGranularity)
	}
	if cfg.BookingTimezone != "Asia/Kolkata" {
		t.Errorf("timezone = %s", cfg.BookingTimezone)
	}
	if cfg.DBMaxOpenConns != 20 || cfg.DBMaxIdleConns != 10 {
		t.Errorf("pool = %d/%d", cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SLOTD_HTTP_PORT", "9090")
	t.Setenv("SLOTD_DATABASE_DRIVER", "memory")
	t.Setenv("SLOTD_BOOKING_START_HOUR", "8")
	t.Setenv("SLOTD_BOOKING_END_HOUR", "20")
	t.Setenv("SLOTD_BOOKING_GRANULARITY_MINUTES", "15")
	t.Setenv("SLOTD_BOOKING_TIMEZONE", "UTC")
	t.Setenv("SLOTD_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("port = %d", cfg.HTTPPort)
	}
	if cfg.DatabaseDriver != "memory" {
		t.Errorf("driver = %s", cfg.DatabaseDriver)
	}
	if cfg.BookingStartHour != 8 || cfg.BookingEndHour != 20 || cfg.BookingGranularity != 15 {
		t.Errorf("booking = [%d, %d) @ %dm", cfg.BookingStartHour, cfg.BookingEndHour, cfg.BookingGranularity)
	}
	if cfg.BookingTimezone != "UTC" {
		t.Errorf("timezone = %s", cfg.BookingTimezone)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %s", cfg.LogLevel)
	}
}

func TestLoad_AddrSplitsHostPort(t *testing.T) {
	t.Setenv("SLOTD_HTTP_ADDR", "127.0.0.1:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HTTPHost != "127.0.0.1" || cfg.HTTPPort != 3000 {
		t.Fatalf("addr = %s", cfg.HTTPAddr())
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "SLOTD_DATABASE_DRIVER", "sqlite"},
		{"inverted hours", "SLOTD_BOOKING_START_HOUR", "18"},
		{"granularity not dividing hour", "SLOTD_BOOKING_GRANULARITY_MINUTES", "45"},
		{"zero granularity", "SLOTD_BOOKING_GRANULARITY_MINUTES", "0"},
		{"bad timezone", "SLOTD_BOOKING_TIMEZONE", "Mars/Olympus"},
		{"bad request timeout", "SLOTD_HTTP_REQUEST_TIMEOUT", "soon"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Setenv(c.key, c.value)
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
