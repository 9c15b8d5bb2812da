// Package pricefeed supplies live prices for prospective position entries.
package pricefeed

import (
	"context"

	"github.com/newthinker/copyhub/internal/core"
)

// Feed returns the latest traded price for a symbol
type Feed interface {
	// Name returns the feed identifier (e.g., "binance")
	Name() string

	// LastPrice fetches the live quote for a normalized symbol (e.g., "BTCUSDT")
	LastPrice(ctx context.Context, symbol string) (core.Quote, error)
}

// Static is a Feed backed by a fixed price table.
type Static map[string]float64

func (s Static) Name() string { return "static" }

func (s Static) LastPrice(_ context.Context, symbol string) (core.Quote, error) {
	price, ok := s[symbol]
	if !ok || price <= 0 {
		return core.Quote{}, core.ErrPriceUnavailable
	}
	return core.Quote{Symbol: symbol, Price: price, Source: "static"}, nil
}
