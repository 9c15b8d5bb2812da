package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/position"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProviders(t *testing.T, list []core.Provider) string {
	t.Helper()
	data, err := json.Marshal(list)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "providers.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func defaultProvidersOptions() providersOptions {
	return providersOptions{
		TimeFrame:    90,
		Coin:         "ALL",
		Exchange:     "ALL",
		ExchangeType: "ALL",
		Sort:         "RETURNS_DESC",
	}
}

func TestListProviders_FromFile(t *testing.T) {
	path := writeProviders(t, []core.Provider{
		{ID: "a", Name: "Alpha", Quote: "USDT", Exchanges: []string{"binance"}, ExchangeType: core.ExchangeSpot, Returns: 10},
		{ID: "b", Name: "Beta", Quote: "BTC", Exchanges: []string{"kucoin"}, ExchangeType: core.ExchangeFutures, Returns: 30},
		{ID: "c", Name: "Gamma", Quote: "USDT", Exchanges: []string{"Binance"}, ExchangeType: core.ExchangeSpot, Returns: 20},
		{ID: "a", Name: "Alpha again", Quote: "USDT", Returns: 99},
	})

	t.Run("defaults dedupe and sort", func(t *testing.T) {
		list, err := listProviders(context.Background(), fileSource(path), defaultProvidersOptions())
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"b", "c", "a"}, ids(list))
		assert.Equal(t, "Alpha", list[2].Name)
	})

	t.Run("filters and paging", func(t *testing.T) {
		opts := defaultProvidersOptions()
		opts.Exchange = "binance"
		opts.Sort = "name_asc"
		opts.Limit = 1
		list, err := listProviders(context.Background(), fileSource(path), opts)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(list))
	})

	t.Run("invalid sort", func(t *testing.T) {
		opts := defaultProvidersOptions()
		opts.Sort = "SIZE_DESC"
		_, err := listProviders(context.Background(), fileSource(path), opts)
		assert.ErrorIs(t, err, core.ErrInvalidSort)
	})

	t.Run("invalid time-frame", func(t *testing.T) {
		opts := defaultProvidersOptions()
		opts.TimeFrame = 0
		_, err := listProviders(context.Background(), fileSource(path), opts)
		assert.ErrorIs(t, err, core.ErrInvalidCriteria)
	})
}

func TestFileSource_Errors(t *testing.T) {
	_, err := fileSource(filepath.Join(t.TempDir(), "missing.json")).Providers(context.Background(), core.ProviderQuery{})
	assert.ErrorIs(t, err, core.ErrFetchFailed)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = fileSource(bad).Providers(context.Background(), core.ProviderQuery{})
	assert.ErrorIs(t, err, core.ErrFetchFailed)
}

func TestPositionFromFlags(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("entry", pflag.ContinueOnError)
		for _, name := range positionFlags {
			fs.Float64(name, 0, "")
		}
		fs.String("price", "", "")
		return fs
	}
	pos := position.Entity{BuyPrice: 100}

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--price", "10"}))
	assert.True(t, positionFromFlags(fs, pos).IsNone())

	fs = newFlags()
	require.NoError(t, fs.Parse([]string{"--buy-price", "100"}))
	got := positionFromFlags(fs, pos)
	require.True(t, got.IsSome())
	assert.Equal(t, 100.0, got.Unwrap().BuyPrice)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "copyhub dev")
}

func ids(list []core.Provider) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}
