package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/newthinker/copyhub/internal/app"
	"github.com/newthinker/copyhub/internal/browse"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/logger"
	"github.com/newthinker/copyhub/internal/provider"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers with filters and sort applied",
	Long: `Fetches the provider list from the trade API, or reads it from a JSON file
with --file, then applies the filter and sort flags and prints the result as JSON.`,
	RunE: runProviders,
}

type providersOptions struct {
	File         string
	Token        string
	ExchangeID   string
	CopyTraders  bool
	Connected    bool
	TimeFrame    int
	Coin         string
	Exchange     string
	ExchangeType string
	Sort         string
	Offset       int
	Limit        int
}

var providersOpts providersOptions

func init() {
	rootCmd.AddCommand(providersCmd)

	f := providersCmd.Flags()
	f.StringVar(&providersOpts.File, "file", "", "read providers from a JSON file instead of the trade API")
	f.StringVar(&providersOpts.Token, "token", os.Getenv("COPYHUB_TRADE_TOKEN"), "trade API session token")
	f.StringVar(&providersOpts.ExchangeID, "exchange-id", "", "internal exchange account id")
	f.BoolVar(&providersOpts.CopyTraders, "copy-traders", false, "list copy traders instead of signal providers")
	f.BoolVar(&providersOpts.Connected, "connected", false, "only providers connected to the account")
	f.IntVar(&providersOpts.TimeFrame, "time-frame", browse.DefaultTimeFrame, "returns time-frame in days")
	f.StringVar(&providersOpts.Coin, "coin", provider.All, "quote asset filter")
	f.StringVar(&providersOpts.Exchange, "exchange", provider.All, "exchange filter")
	f.StringVar(&providersOpts.ExchangeType, "exchange-type", provider.All, "exchange type filter (spot, futures)")
	f.StringVar(&providersOpts.Sort, "sort", provider.DefaultSort.String(), "sort token, e.g. RETURNS_DESC or NAME_ASC")
	f.IntVar(&providersOpts.Offset, "offset", 0, "skip the first n providers")
	f.IntVar(&providersOpts.Limit, "limit", 0, "maximum providers to print (0 = all)")
}

func runProviders(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	var src browse.DataSource
	if providersOpts.File != "" {
		src = fileSource(providersOpts.File)
	} else {
		cfg, err := loadConfig(log)
		if err != nil {
			return err
		}
		if providersOpts.Token == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("--token or COPYHUB_TRADE_TOKEN is required"))
		}
		src = app.NewTradeClient(cfg.TradeAPI, log)
	}

	list, err := listProviders(cmd.Context(), src, providersOpts)
	if err != nil {
		return err
	}
	log.Debug("providers listed", zap.Int("count", len(list)))

	return printJSON(cmd.OutOrStdout(), list)
}

// listProviders fetches from src and applies the criteria in opts.
func listProviders(ctx context.Context, src browse.DataSource, opts providersOptions) ([]core.Provider, error) {
	sort, err := provider.ParseSort(opts.Sort)
	if err != nil {
		return nil, err
	}
	if opts.TimeFrame <= 0 {
		return nil, core.WrapError(core.ErrInvalidCriteria, fmt.Errorf("time-frame must be positive"))
	}

	scope := core.ScopeAll
	if opts.Connected {
		scope = core.ScopeConnected
	}
	source, err := src.Providers(ctx, core.ProviderQuery{
		Token:           opts.Token,
		Scope:           scope,
		ReadOnly:        true,
		CopyTradersOnly: opts.CopyTraders,
		TimeFrame:       opts.TimeFrame,
		ExchangeID:      opts.ExchangeID,
	})
	if err != nil {
		return nil, err
	}

	filters := provider.FilterCriteria{
		Coin:         opts.Coin,
		Exchange:     opts.Exchange,
		ExchangeType: opts.ExchangeType,
	}
	list := provider.Apply(source, filters, sort)
	return provider.Paginate(list, opts.Offset, opts.Limit), nil
}

// fileSource serves a provider list saved as a JSON array. The query is ignored.
type fileSource string

func (f fileSource) Providers(ctx context.Context, q core.ProviderQuery) ([]core.Provider, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, err)
	}
	var list []core.Provider
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("decoding %s: %w", string(f), err))
	}
	return list, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
