// Package tradeapi is the HTTP client for the platform trade API.
package tradeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/copyhub/internal/core"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.zignaly.com"
	defaultTimeout = 15 * time.Second
	defaultMaxBody = 32 << 20
	endpointPath   = "/fe/api.php"
)

// Config configures the client
type Config struct {
	BaseURL   string
	RateLimit float64 // requests per second, 0 disables throttling
	Burst     int
	Timeout   time.Duration
	// MaxResponseBytes caps a response body; 0 uses 32 MiB.
	MaxResponseBytes int64
}

// Client calls trade API actions. It does not retry.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	maxBody int64
}

// New creates a trade API client
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = defaultMaxBody
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		maxBody: cfg.MaxResponseBytes,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// Providers fetches the provider list for q.
func (c *Client) Providers(ctx context.Context, q core.ProviderQuery) ([]core.Provider, error) {
	var out []core.Provider
	if err := c.call(ctx, "getProviderList2", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type quoteAssetsPayload struct {
	Token      string `json:"token"`
	ReadOnly   bool   `json:"ro"`
	ExchangeID string `json:"exchangeInternalId,omitempty"`
}

// QuoteAssets returns the quote asset symbols available for an exchange account, sorted.
func (c *Client) QuoteAssets(ctx context.Context, token, exchangeID string) ([]string, error) {
	var out map[string]json.RawMessage
	payload := quoteAssetsPayload{Token: token, ReadOnly: true, ExchangeID: exchangeID}
	if err := c.call(ctx, "getQuoteAssets", payload, &out); err != nil {
		return nil, err
	}

	assets := make([]string, 0, len(out))
	for symbol := range out {
		assets = append(assets, symbol)
	}
	sort.Strings(assets)
	return assets, nil
}

type tokenPayload struct {
	Token string `json:"token"`
}

// Exchanges returns the exchanges supported by the platform.
func (c *Client) Exchanges(ctx context.Context, token string) ([]core.Exchange, error) {
	var out []core.Exchange
	if err := c.call(ctx, "getExchanges", tokenPayload{Token: token}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, action string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return core.WrapError(core.ErrFetchTimeout, err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("encoding %s payload: %w", action, err))
	}

	endpoint := fmt.Sprintf("%s%s?action=%s", c.baseURL, endpointPath, url.QueryEscape(action))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return core.WrapError(core.ErrFetchTimeout, err)
		}
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s: %w", action, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("reading %s response: %w", action, err))
	}
	if int64(len(raw)) > c.maxBody {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s: response exceeds %d bytes", action, c.maxBody))
	}

	c.logger.Debug("trade api call",
		zap.String("action", action),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if apiErr := decodeError(raw); apiErr != nil {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s: %w", action, apiErr))
	}
	if resp.StatusCode != http.StatusOK {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s: unexpected status: %d", action, resp.StatusCode))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("decoding %s response: %w", action, err))
	}
	return nil
}
