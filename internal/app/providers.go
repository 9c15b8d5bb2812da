package app

import (
	"context"
	"errors"

	"github.com/moznion/go-optional"
	"github.com/newthinker/copyhub/internal/browse"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/provider"
	"go.uber.org/zap"
)

// ListRequest selects a session and optionally changes its criteria before listing.
// Unset options keep the session's current value.
type ListRequest struct {
	Session      SessionKey
	TimeFrame    optional.Option[int]
	Coin         optional.Option[string]
	Exchange     optional.Option[string]
	ExchangeType optional.Option[string]
	Sort         optional.Option[string]
	Refresh      bool
}

// ListResult is the derived provider list and the state that produced it.
type ListResult struct {
	Providers []core.Provider
	State     browse.State
}

// ListProviders applies the requested criteria and returns the filtered, sorted list.
// The session is loaded on first use, on a time-frame change and when Refresh is set.
func (a *App) ListProviders(ctx context.Context, req ListRequest) (ListResult, error) {
	s, err := a.Session(ctx, req.Session)
	if err != nil {
		return ListResult{}, err
	}

	if req.Sort.IsSome() {
		if err := s.SetSort(ctx, req.Sort.Unwrap()); err != nil {
			if !isSettingsError(err) {
				return ListResult{}, err
			}
			a.warnSettings(err)
		}
	}

	setters := []struct {
		value optional.Option[string]
		set   func(context.Context, string) error
	}{
		{req.Coin, s.SetCoin},
		{req.Exchange, s.SetExchange},
		{req.ExchangeType, s.SetExchangeType},
	}
	for _, st := range setters {
		if st.value.IsNone() {
			continue
		}
		if err := st.set(ctx, st.value.Unwrap()); err != nil {
			a.warnSettings(err)
		}
	}

	loaded := false
	if req.TimeFrame.IsSome() {
		before := s.State()
		if err := s.SetTimeFrame(ctx, req.TimeFrame.Unwrap()); err != nil {
			return ListResult{}, err
		}
		loaded = !before.Loaded || before.TimeFrame != req.TimeFrame.Unwrap()
	}

	if !loaded && (req.Refresh || !s.State().Loaded) {
		if err := s.Load(ctx); err != nil {
			return ListResult{}, err
		}
	}

	return ListResult{Providers: s.Providers(), State: s.State()}, nil
}

// ClearFilters resets the session filters to ALL.
func (a *App) ClearFilters(ctx context.Context, key SessionKey) (browse.State, error) {
	s, err := a.Session(ctx, key)
	if err != nil {
		return browse.State{}, err
	}
	if err := s.ClearFilters(ctx); err != nil {
		a.warnSettings(err)
	}
	return s.State(), nil
}

// ClearSort restores the default sort.
func (a *App) ClearSort(ctx context.Context, key SessionKey) (browse.State, error) {
	s, err := a.Session(ctx, key)
	if err != nil {
		return browse.State{}, err
	}
	if err := s.ClearSort(ctx); err != nil {
		a.warnSettings(err)
	}
	return s.State(), nil
}

// OptionSet holds every selectable filter and sort value.
type OptionSet struct {
	Coins         []provider.Option `json:"coins"`
	Exchanges     []provider.Option `json:"exchanges"`
	ExchangeTypes []provider.Option `json:"exchangeTypes"`
	Sorts         []provider.Option `json:"sorts"`
}

// Options returns the filter and sort options. Coin options are omitted for connected pages.
// When the market lookups fail the lists fall back to the ALL entry alone.
func (a *App) Options(ctx context.Context, key SessionKey) OptionSet {
	var assets []string
	var exchanges []core.Exchange

	if a.deps.Market != nil {
		if !key.Options.ConnectedOnly {
			var err error
			if assets, err = a.deps.Market.QuoteAssets(ctx, key.Token, key.ExchangeID); err != nil {
				a.logger.Warn("failed to load quote assets", zap.Error(err))
				a.deps.Alerts.Error(ctx, "options", err)
			}
		}
		var err error
		if exchanges, err = a.deps.Market.Exchanges(ctx, key.Token); err != nil {
			a.logger.Warn("failed to load exchanges", zap.Error(err))
			a.deps.Alerts.Error(ctx, "options", err)
		}
	}

	return OptionSet{
		Coins:         provider.CoinOptions(assets),
		Exchanges:     provider.ExchangeOptions(exchanges),
		ExchangeTypes: provider.ExchangeTypeOptions(),
		Sorts:         provider.SortOptions(),
	}
}

func isSettingsError(err error) bool {
	return errors.Is(err, core.ErrSettingsFailed)
}

func (a *App) warnSettings(err error) {
	a.logger.Warn("failed to save browse settings", zap.Error(err))
}
