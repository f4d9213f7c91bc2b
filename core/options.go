package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges defaults, loaded configuration, and runtime
// overrides into one validated Config.
type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

func NewStaticRawConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader{Values: values}
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}

	database := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Database.Driver) != "" {
		database["driver"] = cfg.Database.Driver
	}
	if includeZero || strings.TrimSpace(cfg.Database.Server) != "" {
		database["server"] = cfg.Database.Server
	}
	if includeZero || cfg.Database.Debug {
		database["debug"] = cfg.Database.Debug
	}
	if includeZero || cfg.Database.PingTimeoutSeconds != 0 {
		database["ping_timeout_seconds"] = cfg.Database.PingTimeoutSeconds
	}
	if includeZero || strings.TrimSpace(cfg.Database.OtelIdentifier) != "" {
		database["otel_identifier"] = cfg.Database.OtelIdentifier
	}
	if len(database) > 0 {
		layer["database"] = database
	}

	queue := map[string]any{}
	if includeZero || cfg.Queue.MaxRetries != 0 {
		queue["max_retries"] = cfg.Queue.MaxRetries
	}
	if includeZero || cfg.Queue.CleanupAfterDays != 0 {
		queue["cleanup_after_days"] = cfg.Queue.CleanupAfterDays
	}
	if len(queue) > 0 {
		layer["queue"] = queue
	}

	processor := map[string]any{}
	if includeZero || cfg.Processor.PollIntervalSeconds != 0 {
		processor["poll_interval_seconds"] = cfg.Processor.PollIntervalSeconds
	}
	if includeZero || cfg.Processor.LowStockThreshold != 0 {
		processor["low_stock_threshold"] = cfg.Processor.LowStockThreshold
	}
	if len(processor) > 0 {
		layer["processor"] = processor
	}

	notifications := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Notifications.WebhookURL) != "" {
		notifications["webhook_url"] = cfg.Notifications.WebhookURL
	}
	if includeZero || cfg.Notifications.TimeoutSeconds != 0 {
		notifications["timeout_seconds"] = cfg.Notifications.TimeoutSeconds
	}
	if len(notifications) > 0 {
		layer["notifications"] = notifications
	}

	webhook := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Webhook.Secret) != "" {
		webhook["secret"] = cfg.Webhook.Secret
	}
	if len(webhook) > 0 {
		layer["webhook"] = webhook
	}

	return layer
}
