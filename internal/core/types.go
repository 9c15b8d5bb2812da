package core

import (
	"strings"
	"time"
)

// ExchangeType represents the market type an exchange account trades on
type ExchangeType string

const (
	ExchangeSpot    ExchangeType = "spot"
	ExchangeFutures ExchangeType = "futures"
)

// Provider represents a copy-trader or signal provider as returned by the trade API.
// Records are treated as immutable once fetched.
type Provider struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"shortDesc,omitempty"`
	LogoURL      string       `json:"logoUrl,omitempty"`
	Quote        string       `json:"quote"`
	Exchanges    []string     `json:"exchanges"`
	ExchangeType ExchangeType `json:"exchangeType"`
	Returns      float64      `json:"returns"`
	Floating     float64      `json:"floating"`
	CreatedAt    int64        `json:"createdAt"` // unix millis
	Price        float64      `json:"price"`
	Connected    bool         `json:"connected,omitempty"`
	CopyTrading  bool         `json:"isCopyTrading,omitempty"`
}

// TotalReturns is the closed returns plus the floating P&L.
func (p Provider) TotalReturns() float64 {
	return p.Returns + p.Floating
}

// HasExchange reports whether the provider trades on the named exchange, ignoring case.
func (p Provider) HasExchange(name string) bool {
	for _, e := range p.Exchanges {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// Created returns the creation timestamp as time.Time.
func (p Provider) Created() time.Time {
	return time.UnixMilli(p.CreatedAt)
}

// Exchange describes an exchange supported by the platform
type Exchange struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Enabled            bool     `json:"enabled"`
	RequiredAuthFields []string `json:"requiredAuthFields"`
	Type               []string `json:"type"`
	TestNet            []string `json:"testNet"`
}

// Quote represents a live price for a symbol
type Quote struct {
	Symbol string
	Price  float64
	Time   time.Time
	Source string
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// ProviderScope selects every provider or only those the user is connected to
type ProviderScope string

const (
	ScopeAll       ProviderScope = "all"
	ScopeConnected ProviderScope = "connected"
)

// ProviderQuery is the request for one provider list fetch.
type ProviderQuery struct {
	Token           string        `json:"token"`
	Scope           ProviderScope `json:"type"`
	ReadOnly        bool          `json:"ro"`
	CopyTradersOnly bool          `json:"copyTradersOnly"`
	TimeFrame       int           `json:"timeFrame"`
	ExchangeID      string        `json:"internalExchangeId"`
}
