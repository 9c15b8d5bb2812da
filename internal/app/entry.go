package app

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/newthinker/copyhub/internal/position"
	"go.uber.org/zap"
)

// EntryRequest describes a position entry to resolve. Symbol, when set, lets a prospective
// entry without a usable price fall back to the live feed.
type EntryRequest struct {
	Position optional.Option[position.Entity]
	Inputs   position.Inputs
	Symbol   string
}

// ResolveEntry resolves the entry figures. A live price that cannot be fetched degrades the
// entry price to the supplied LastPrice, never to an error.
func (a *App) ResolveEntry(ctx context.Context, req EntryRequest) position.Entry {
	inputs := req.Inputs
	r := position.NewResolver(req.Position, inputs)

	if r.Mode() == position.ModeProspective && r.EntryPrice() <= 0 && req.Symbol != "" && a.deps.Feed != nil {
		quote, err := a.deps.Feed.LastPrice(ctx, req.Symbol)
		if err != nil {
			a.logger.Warn("live price unavailable",
				zap.String("symbol", req.Symbol),
				zap.String("feed", a.deps.Feed.Name()),
				zap.Error(err),
			)
		} else {
			inputs.LastPrice = quote.Price
			r = position.NewResolver(req.Position, inputs)
		}
	}

	entry := r.Resolve()
	if a.deps.Metrics != nil {
		a.deps.Metrics.RecordEntryResolution(string(entry.Mode))
	}
	return entry
}
