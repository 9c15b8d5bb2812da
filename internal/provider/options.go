package provider

import (
	"sort"
	"strings"

	"github.com/newthinker/copyhub/internal/core"
)

// Option is a selectable filter or sort value.
type Option struct {
	Value string `json:"val"`
	Label string `json:"label"`
}

// CoinOptions lists "ALL" followed by the quote assets in alphabetical order.
func CoinOptions(quoteAssets []string) []Option {
	assets := make([]string, 0, len(quoteAssets))
	seen := make(map[string]struct{}, len(quoteAssets))
	for _, a := range quoteAssets {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		assets = append(assets, a)
	}
	sort.Strings(assets)

	opts := make([]Option, 0, len(assets)+1)
	opts = append(opts, Option{Value: All, Label: "All Coins"})
	for _, a := range assets {
		opts = append(opts, Option{Value: a, Label: a})
	}
	return opts
}

// ExchangeOptions lists "ALL" followed by the enabled exchanges. Values are lowercased
// to match the exchange names carried by provider records.
func ExchangeOptions(exchanges []core.Exchange) []Option {
	opts := []Option{{Value: All, Label: "All Exchanges"}}
	for _, e := range exchanges {
		if !e.Enabled {
			continue
		}
		opts = append(opts, Option{Value: strings.ToLower(e.Name), Label: e.Name})
	}
	return opts
}

// ExchangeTypeOptions lists the exchange type filter values.
func ExchangeTypeOptions() []Option {
	return []Option{
		{Value: All, Label: "All Types"},
		{Value: string(core.ExchangeSpot), Label: "Spot"},
		{Value: string(core.ExchangeFutures), Label: "Futures"},
	}
}

// SortOptions lists every key in both directions.
func SortOptions() []Option {
	labels := map[SortKey]string{
		SortReturns: "Returns",
		SortDate:    "Creation date",
		SortName:    "Name",
		SortFee:     "Fee",
	}

	opts := make([]Option, 0, len(SortKeys)*2)
	for _, k := range SortKeys {
		for _, d := range []Direction{Desc, Asc} {
			s := SortCriteria{Key: k, Direction: d}
			opts = append(opts, Option{
				Value: s.String(),
				Label: labels[k] + " " + strings.ToLower(string(d)),
			})
		}
	}
	return opts
}
