// Package binance implements the live price feed against the Binance spot API
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/shopspring/decimal"
)

const (
	baseURL = "https://api.binance.com"
)

// Binance implements pricefeed.Feed
type Binance struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// New creates a new Binance feed
func New() *Binance {
	return &Binance{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		now:     time.Now,
	}
}

// NewWithBaseURL creates a Binance feed with custom base URL (for testing)
func NewWithBaseURL(url string) *Binance {
	b := New()
	b.baseURL = strings.TrimRight(url, "/")
	return b
}

func (b *Binance) Name() string {
	return "binance"
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// LastPrice fetches the latest price from /api/v3/ticker/price
func (b *Binance) LastPrice(ctx context.Context, symbol string) (core.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return core.Quote{}, core.WrapError(core.ErrPriceUnavailable, fmt.Errorf("symbol is required"))
	}

	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return core.Quote{}, core.WrapError(core.ErrPriceUnavailable, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return core.Quote{}, core.WrapError(core.ErrPriceUnavailable, fmt.Errorf("fetching price: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Quote{}, core.WrapError(core.ErrPriceUnavailable, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var result tickerPrice
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return core.Quote{}, core.WrapError(core.ErrPriceUnavailable, fmt.Errorf("decoding response: %w", err))
	}

	price, err := decimal.NewFromString(result.Price)
	if err != nil || !price.IsPositive() {
		return core.Quote{}, core.WrapError(core.ErrPriceUnavailable, fmt.Errorf("invalid price %q", result.Price))
	}

	return core.Quote{
		Symbol: symbol,
		Price:  price.InexactFloat64(),
		Time:   b.now(),
		Source: "binance",
	}, nil
}
