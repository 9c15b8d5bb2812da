package app

import (
	"fmt"

	"github.com/newthinker/copyhub/internal/alert"
	"github.com/newthinker/copyhub/internal/alert/webhook"
	"github.com/newthinker/copyhub/internal/config"
	"github.com/newthinker/copyhub/internal/metrics"
	"github.com/newthinker/copyhub/internal/pricefeed"
	"github.com/newthinker/copyhub/internal/pricefeed/binance"
	"github.com/newthinker/copyhub/internal/settings"
	"github.com/newthinker/copyhub/internal/storage/blob"
	"github.com/newthinker/copyhub/internal/tradeapi"
	"go.uber.org/zap"
)

// Build assembles an App from configuration.
func Build(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := NewTradeClient(cfg.TradeAPI, logger)

	store, err := NewSettingsStores(cfg.Settings)
	if err != nil {
		return nil, err
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	alerts, err := NewAlerts(cfg.Alerts, logger)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		alerts.SetRecorder(reg)
	}

	return New(Deps{
		Source:   client,
		Market:   client,
		Settings: store,
		Feed:     NewPriceFeed(cfg.PriceFeed),
		Alerts:   alerts,
		Metrics:  reg,
		Logger:   logger,
	}, cfg.Server.SessionTTL)
}

// NewTradeClient creates the trade API client.
func NewTradeClient(cfg config.TradeAPIConfig, logger *zap.Logger) *tradeapi.Client {
	return tradeapi.New(tradeapi.Config{
		BaseURL:   cfg.BaseURL,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		Timeout:   cfg.Timeout,
	}, logger.Named("tradeapi"))
}

// NewSettingsStores creates the per-user settings stores for the configured backend.
func NewSettingsStores(cfg config.SettingsConfig) (settings.Stores, error) {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "settings"
	}

	switch cfg.Type {
	case "", "memory":
		return settings.NewMemoryStores(), nil
	case "localfs":
		fs, err := blob.NewLocalFS(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("creating settings storage: %w", err)
		}
		return settings.NewBlobStores(fs, prefix), nil
	case "s3":
		s3 := blob.NewS3(blob.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		return settings.NewBlobStores(s3, prefix), nil
	default:
		return nil, fmt.Errorf("unknown settings type %q", cfg.Type)
	}
}

// NewPriceFeed creates the configured live price feed, nil when disabled.
func NewPriceFeed(cfg config.PriceFeedConfig) pricefeed.Feed {
	switch cfg.Provider {
	case "binance":
		if cfg.BaseURL != "" {
			return binance.NewWithBaseURL(cfg.BaseURL)
		}
		return binance.New()
	default:
		return nil
	}
}

// NewAlerts creates the alert dispatcher with the configured notifiers.
func NewAlerts(cfg config.AlertsConfig, logger *zap.Logger) (*alert.Dispatcher, error) {
	registry := alert.NewRegistry()
	if cfg.Webhook.Enabled {
		hook, err := webhook.New(cfg.Webhook.URL, cfg.Webhook.Headers)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(hook); err != nil {
			return nil, err
		}
	}
	return alert.NewDispatcher(registry, cfg.Cooldown, logger.Named("alert")), nil
}
