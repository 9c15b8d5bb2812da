package main

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/newthinker/copyhub/internal/app"
	"github.com/newthinker/copyhub/internal/logger"
	"github.com/newthinker/copyhub/internal/position"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Resolve entry figures for a position",
	Long: `Resolves entry price, size, size in quote, price change and profit percentage.
Any of the position flags (--buy-price, --amount, --size-quote, --price-difference,
--profit) describe an open position; otherwise the order form flags are used and,
when --symbol is given without a usable --price, the live price feed is consulted.`,
	RunE: runEntry,
}

var (
	entryInputs position.Inputs
	entryPos    position.Entity
	entrySymbol string
)

// positionFlags mark the entry flags that describe an open position.
var positionFlags = []string{"buy-price", "amount", "size-quote", "price-difference", "profit"}

func init() {
	rootCmd.AddCommand(entryCmd)

	f := entryCmd.Flags()
	f.StringVar(&entryInputs.Price, "price", "", "order form price")
	f.StringVar(&entryInputs.Units, "units", "", "order form units")
	f.StringVar(&entryInputs.PositionSize, "position-size", "", "order form position size in quote")
	f.Float64Var(&entryInputs.LastPrice, "last-price", 0, "last market price")
	f.StringVar(&entrySymbol, "symbol", "", "market symbol for the live price, e.g. BTCUSDT")

	f.Float64Var(&entryPos.BuyPrice, "buy-price", 0, "open position entry price")
	f.Float64Var(&entryPos.Amount, "amount", 0, "open position amount")
	f.Float64Var(&entryPos.PositionSizeQuote, "size-quote", 0, "open position size in quote")
	f.Float64Var(&entryPos.PriceDifference, "price-difference", 0, "open position price change percent")
	f.Float64Var(&entryPos.ProfitPercentage, "profit", 0, "open position profit percent")
}

func runEntry(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a, err := app.New(app.Deps{
		Source: app.NewTradeClient(cfg.TradeAPI, log),
		Feed:   app.NewPriceFeed(cfg.PriceFeed),
		Logger: log,
	}, cfg.Server.SessionTTL)
	if err != nil {
		return fmt.Errorf("building app: %w", err)
	}

	entry := a.ResolveEntry(cmd.Context(), app.EntryRequest{
		Position: positionFromFlags(cmd.Flags(), entryPos),
		Inputs:   entryInputs,
		Symbol:   entrySymbol,
	})
	return printJSON(cmd.OutOrStdout(), entry)
}

// positionFromFlags returns pos when any position flag was set on the command line.
func positionFromFlags(flags *pflag.FlagSet, pos position.Entity) optional.Option[position.Entity] {
	for _, name := range positionFlags {
		if flags.Changed(name) {
			return optional.Some(pos)
		}
	}
	return optional.None[position.Entity]()
}
