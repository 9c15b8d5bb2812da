package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/pricefeed"
)

func TestBinance_ImplementsFeed(t *testing.T) {
	var _ pricefeed.Feed = (*Binance)(nil)
}

func TestBinance_Name(t *testing.T) {
	b := New()
	if b.Name() != "binance" {
		t.Errorf("expected 'binance', got '%s'", b.Name())
	}
}

func TestBinance_LastPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("expected symbol BTCUSDT, got %s", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"20000.50000000"}`))
	}))
	defer server.Close()

	b := NewWithBaseURL(server.URL)
	quote, err := b.LastPrice(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("LastPrice failed: %v", err)
	}
	if quote.Price != 20000.5 {
		t.Errorf("expected 20000.5, got %f", quote.Price)
	}
	if quote.Source != "binance" || !quote.IsValid() {
		t.Errorf("unexpected quote %+v", quote)
	}
}

func TestBinance_LastPrice_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad status", http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`},
		{"bad json", http.StatusOK, `not json`},
		{"bad price", http.StatusOK, `{"symbol":"BTCUSDT","price":"abc"}`},
		{"zero price", http.StatusOK, `{"symbol":"BTCUSDT","price":"0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewWithBaseURL(server.URL).LastPrice(context.Background(), "BTCUSDT")
			if !errors.Is(err, core.ErrPriceUnavailable) {
				t.Errorf("expected ErrPriceUnavailable, got %v", err)
			}
		})
	}
}

func TestBinance_LastPrice_EmptySymbol(t *testing.T) {
	_, err := New().LastPrice(context.Background(), " ")
	if !errors.Is(err, core.ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable, got %v", err)
	}
}
