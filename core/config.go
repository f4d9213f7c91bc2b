package core

import (
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig satisfies the go-persistence-bun config contract so it can
// be handed straight to persistence.New.
type DatabaseConfig struct {
	Driver             string `koanf:"driver" mapstructure:"driver"`
	Server             string `koanf:"server" mapstructure:"server"`
	Debug              bool   `koanf:"debug" mapstructure:"debug"`
	PingTimeoutSeconds int    `koanf:"ping_timeout_seconds" mapstructure:"ping_timeout_seconds"`
	OtelIdentifier     string `koanf:"otel_identifier" mapstructure:"otel_identifier"`
}

func (c DatabaseConfig) GetDebug() bool {
	return c.Debug
}

func (c DatabaseConfig) GetDriver() string {
	return strings.TrimSpace(c.Driver)
}

func (c DatabaseConfig) GetServer() string {
	return strings.TrimSpace(c.Server)
}

func (c DatabaseConfig) GetPingTimeout() time.Duration {
	if c.PingTimeoutSeconds < 1 {
		return 5 * time.Second
	}
	return time.Duration(c.PingTimeoutSeconds) * time.Second
}

func (c DatabaseConfig) GetOtelIdentifier() string {
	return strings.TrimSpace(c.OtelIdentifier)
}

type QueueConfig struct {
	MaxRetries       int `koanf:"max_retries" mapstructure:"max_retries"`
	CleanupAfterDays int `koanf:"cleanup_after_days" mapstructure:"cleanup_after_days"`
}

type ProcessorConfig struct {
	PollIntervalSeconds int `koanf:"poll_interval_seconds" mapstructure:"poll_interval_seconds"`
	LowStockThreshold   int `koanf:"low_stock_threshold" mapstructure:"low_stock_threshold"`
}

type NotificationsConfig struct {
	WebhookURL     string `koanf:"webhook_url" mapstructure:"webhook_url"`
	TimeoutSeconds int    `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
}

type WebhookConfig struct {
	Secret string `koanf:"secret" mapstructure:"secret"`
}

type Config struct {
	ServiceName   string              `koanf:"service_name" mapstructure:"service_name"`
	Database      DatabaseConfig      `koanf:"database" mapstructure:"database"`
	Queue         QueueConfig         `koanf:"queue" mapstructure:"queue"`
	Processor     ProcessorConfig     `koanf:"processor" mapstructure:"processor"`
	Notifications NotificationsConfig `koanf:"notifications" mapstructure:"notifications"`
	Webhook       WebhookConfig       `koanf:"webhook" mapstructure:"webhook"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "commerce-webhooks",
		Database: DatabaseConfig{
			Driver:             "sqlite3",
			Server:             "file:commerce-webhooks.db?cache=shared&_foreign_keys=on",
			PingTimeoutSeconds: 5,
		},
		Queue: QueueConfig{
			MaxRetries:       DefaultMaxRetries,
			CleanupAfterDays: 7,
		},
		Processor: ProcessorConfig{
			PollIntervalSeconds: 5,
			LowStockThreshold:   5,
		},
		Notifications: NotificationsConfig{
			TimeoutSeconds: 10,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Database.GetDriver() == "" {
		return fmt.Errorf("core: database.driver is required")
	}
	if c.Database.GetServer() == "" {
		return fmt.Errorf("core: database.server is required")
	}
	if c.Queue.MaxRetries < 1 {
		return fmt.Errorf("core: queue.max_retries must be >= 1")
	}
	if c.Queue.CleanupAfterDays < 1 {
		return fmt.Errorf("core: queue.cleanup_after_days must be >= 1")
	}
	if c.Processor.PollIntervalSeconds < 1 {
		return fmt.Errorf("core: processor.poll_interval_seconds must be >= 1")
	}
	if c.Processor.LowStockThreshold < 0 {
		return fmt.Errorf("core: processor.low_stock_threshold must be >= 0")
	}
	if c.Notifications.TimeoutSeconds < 1 {
		return fmt.Errorf("core: notifications.timeout_seconds must be >= 1")
	}
	return nil
}

func (c ProcessorConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds < 1 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c NotificationsConfig) Timeout() time.Duration {
	if c.TimeoutSeconds < 1 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c QueueConfig) CleanupWindow() time.Duration {
	days := c.CleanupAfterDays
	if days < 1 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}
