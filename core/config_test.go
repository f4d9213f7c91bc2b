package core

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if cfg.Queue.MaxRetries != DefaultMaxRetries {
		t.Fatalf("expected default max retries %d, got %d", DefaultMaxRetries, cfg.Queue.MaxRetries)
	}
	if cfg.Database.GetDriver() != "sqlite3" {
		t.Fatalf("expected sqlite default driver, got %q", cfg.Database.GetDriver())
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"blank service name", func(c *Config) { c.ServiceName = "  " }},
		{"blank database driver", func(c *Config) { c.Database.Driver = "" }},
		{"blank database server", func(c *Config) { c.Database.Server = "  " }},
		{"zero max retries", func(c *Config) { c.Queue.MaxRetries = 0 }},
		{"zero cleanup days", func(c *Config) { c.Queue.CleanupAfterDays = 0 }},
		{"zero poll interval", func(c *Config) { c.Processor.PollIntervalSeconds = 0 }},
		{"negative low stock threshold", func(c *Config) { c.Processor.LowStockThreshold = -1 }},
		{"zero notification timeout", func(c *Config) { c.Notifications.TimeoutSeconds = 0 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestDatabaseConfigAccessors(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:         "  postgres ",
		Server:         " postgres://localhost/webhooks ",
		OtelIdentifier: " webhooks-db ",
	}
	if cfg.GetDriver() != "postgres" {
		t.Fatalf("expected trimmed driver, got %q", cfg.GetDriver())
	}
	if cfg.GetServer() != "postgres://localhost/webhooks" {
		t.Fatalf("expected trimmed server, got %q", cfg.GetServer())
	}
	if cfg.GetOtelIdentifier() != "webhooks-db" {
		t.Fatalf("expected trimmed otel identifier, got %q", cfg.GetOtelIdentifier())
	}
	if cfg.GetPingTimeout() != 5*time.Second {
		t.Fatalf("expected default ping timeout, got %s", cfg.GetPingTimeout())
	}

	cfg.PingTimeoutSeconds = 12
	if cfg.GetPingTimeout() != 12*time.Second {
		t.Fatalf("expected configured ping timeout, got %s", cfg.GetPingTimeout())
	}
}

func TestDurationHelpersDefaultWhenUnset(t *testing.T) {
	var processor ProcessorConfig
	if processor.PollInterval() != 5*time.Second {
		t.Fatalf("expected poll interval default, got %s", processor.PollInterval())
	}
	processor.PollIntervalSeconds = 30
	if processor.PollInterval() != 30*time.Second {
		t.Fatalf("expected configured poll interval, got %s", processor.PollInterval())
	}

	var notifications NotificationsConfig
	if notifications.Timeout() != 10*time.Second {
		t.Fatalf("expected notification timeout default, got %s", notifications.Timeout())
	}

	var queue QueueConfig
	if queue.CleanupWindow() != 7*24*time.Hour {
		t.Fatalf("expected cleanup window default, got %s", queue.CleanupWindow())
	}
	queue.CleanupAfterDays = 2
	if queue.CleanupWindow() != 48*time.Hour {
		t.Fatalf("expected configured cleanup window, got %s", queue.CleanupWindow())
	}
}
