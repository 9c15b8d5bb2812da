package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	TradeAPI  TradeAPIConfig  `mapstructure:"trade_api"`
	PriceFeed PriceFeedConfig `mapstructure:"price_feed"`
	Settings  SettingsConfig  `mapstructure:"settings"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	APIKey          string        `mapstructure:"api_key"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// SessionTTL evicts browse sessions idle for longer than this.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type TradeAPIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second
	Burst     int           `mapstructure:"burst"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type PriceFeedConfig struct {
	Provider string `mapstructure:"provider"` // "binance" or "" to disable
	BaseURL  string `mapstructure:"base_url"`
}

type SettingsConfig struct {
	Type   string   `mapstructure:"type"`   // "memory", "localfs" or "s3"
	Path   string   `mapstructure:"path"`   // For localfs
	Prefix string   `mapstructure:"prefix"` // Key prefix of the per-user documents
	S3     S3Config `mapstructure:"s3"`     // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AlertsConfig holds alert delivery configuration.
type AlertsConfig struct {
	Cooldown time.Duration `mapstructure:"cooldown"`
	Webhook  WebhookConfig `mapstructure:"webhook"`
}

type WebhookConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load reads configuration from file on top of Defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			SessionTTL:      30 * time.Minute,
		},
		TradeAPI: TradeAPIConfig{
			BaseURL:   "https://api.zignaly.com",
			RateLimit: 5,
			Burst:     5,
			Timeout:   15 * time.Second,
		},
		PriceFeed: PriceFeedConfig{
			Provider: "binance",
		},
		Settings: SettingsConfig{
			Type:   "memory",
			Prefix: "settings",
		},
		Alerts: AlertsConfig{
			Cooldown: 5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Server.ShutdownTimeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout))
	}

	// Trade API validation
	if c.TradeAPI.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("trade_api.base_url is required"))
	}
	if c.TradeAPI.RateLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("trade_api.rate_limit cannot be negative, got %f", c.TradeAPI.RateLimit))
	}

	switch c.PriceFeed.Provider {
	case "", "binance":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown price_feed.provider %q", c.PriceFeed.Provider))
	}

	// Settings validation
	switch c.Settings.Type {
	case "", "memory":
	case "localfs":
		if c.Settings.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("settings.path required when type is localfs"))
		}
	case "s3":
		if c.Settings.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("settings.s3.bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown settings.type %q", c.Settings.Type))
	}

	// Alerts validation
	if c.Alerts.Cooldown < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("alerts.cooldown cannot be negative, got %s", c.Alerts.Cooldown))
	}
	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("alerts.webhook.url required when webhook is enabled"))
	}

	return nil
}
