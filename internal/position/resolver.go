// Package position resolves the entry figures shown for an open or prospective position.
//
// An existing position always wins: its confirmed fill values are reported as-is. Without
// one, the figures come from the order form inputs and the live market price.
package position

import (
	"math"

	"github.com/moznion/go-optional"
)

// Entity is the subset of an open position needed to describe its entry.
type Entity struct {
	BuyPrice          float64 `json:"buyPrice"`
	Amount            float64 `json:"amount"`
	PositionSizeQuote float64 `json:"positionSizeQuote"`
	PriceDifference   float64 `json:"priceDifference"`
	// ProfitPercentage includes leverage and is positive for profitable shorts.
	ProfitPercentage float64 `json:"profitPercentage"`
}

// Inputs are the raw order form values plus the live reference price.
type Inputs struct {
	Price        string  `json:"price"`
	Units        string  `json:"units"`
	PositionSize string  `json:"positionSize"`
	LastPrice    float64 `json:"lastPrice"`
}

// Mode tells which rule table produced the figures.
type Mode string

const (
	ModeExisting    Mode = "existing"
	ModeProspective Mode = "prospective"
)

// Entry holds every resolved figure.
type Entry struct {
	Mode               Mode    `json:"mode"`
	EntryPrice         float64 `json:"entryPrice"`
	EntrySize          float64 `json:"entrySize"`
	EntrySizeQuote     float64 `json:"entrySizeQuote"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	ProfitPercent      float64 `json:"profitPercent"`
}

// Resolver projects entry figures from an optional position and form inputs.
// Values are recomputed on every call.
type Resolver struct {
	position optional.Option[Entity]
	inputs   Inputs
}

// NewResolver creates a resolver. Pass optional.None for a position that is not open yet.
func NewResolver(position optional.Option[Entity], inputs Inputs) Resolver {
	return Resolver{position: position, inputs: inputs}
}

// Mode reports whether an existing position is being described.
func (r Resolver) Mode() Mode {
	if r.position.IsSome() {
		return ModeExisting
	}
	return ModeProspective
}

// EntryPrice is the buy price of an open position, otherwise the strategy price when it
// is a positive number, otherwise the live price.
func (r Resolver) EntryPrice() float64 {
	if r.position.IsSome() {
		return r.position.Unwrap().BuyPrice
	}
	if price, ok := parseNumber(r.inputs.Price); ok && price > 0 {
		return price
	}
	return r.inputs.LastPrice
}

// EntrySize is the base currency amount.
func (r Resolver) EntrySize() float64 {
	if r.position.IsSome() {
		return r.position.Unwrap().Amount
	}
	return numberOrZero(r.inputs.Units)
}

// EntrySizeQuote is the position size in quote currency.
func (r Resolver) EntrySizeQuote() float64 {
	if r.position.IsSome() {
		return r.position.Unwrap().PositionSizeQuote
	}
	return numberOrZero(r.inputs.PositionSize)
}

// EntryPricePercentChange is the price difference from entry. Prospective positions have
// none yet.
func (r Resolver) EntryPricePercentChange() float64 {
	if r.position.IsNone() {
		return 0
	}
	diff := r.position.Unwrap().PriceDifference
	if math.IsNaN(diff) {
		return 0
	}
	return diff
}

// ProfitPercentage is the leveraged profit of an open position, 0 otherwise.
func (r Resolver) ProfitPercentage() float64 {
	if r.position.IsSome() {
		return r.position.Unwrap().ProfitPercentage
	}
	return 0
}

// Resolve computes every figure at once.
func (r Resolver) Resolve() Entry {
	return Entry{
		Mode:               r.Mode(),
		EntryPrice:         r.EntryPrice(),
		EntrySize:          r.EntrySize(),
		EntrySizeQuote:     r.EntrySizeQuote(),
		PriceChangePercent: r.EntryPricePercentChange(),
		ProfitPercent:      r.ProfitPercentage(),
	}
}

func numberOrZero(s string) float64 {
	if v, ok := parseNumber(s); ok {
		return v
	}
	return 0
}
