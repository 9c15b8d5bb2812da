package core

import (
	"testing"
	"time"
)

func TestQuote_IsValid(t *testing.T) {
	q := Quote{
		Symbol: "BTCUSDT",
		Price:  20000,
		Time:   time.Now(),
	}

	if !q.IsValid() {
		t.Error("expected valid quote")
	}

	invalid := Quote{Symbol: "", Price: 0}
	if invalid.IsValid() {
		t.Error("expected invalid quote")
	}
}

func TestExchangeType_Constants(t *testing.T) {
	types := []ExchangeType{ExchangeSpot, ExchangeFutures}
	expected := []string{"spot", "futures"}

	for i, et := range types {
		if string(et) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], et)
		}
	}
}

func TestProvider_TotalReturns(t *testing.T) {
	p := Provider{Returns: 5, Floating: 1.5}
	if p.TotalReturns() != 6.5 {
		t.Errorf("expected 6.5, got %f", p.TotalReturns())
	}
}

func TestProvider_HasExchange(t *testing.T) {
	p := Provider{Exchanges: []string{"binance", "KuCoin"}}

	tests := []struct {
		name string
		want bool
	}{
		{"binance", true},
		{"BINANCE", true},
		{"kucoin", true},
		{"bitmex", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := p.HasExchange(tt.name); got != tt.want {
			t.Errorf("HasExchange(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProvider_Created(t *testing.T) {
	p := Provider{CreatedAt: 1600000000000}
	if !p.Created().Equal(time.UnixMilli(1600000000000)) {
		t.Errorf("unexpected created time %v", p.Created())
	}
}
