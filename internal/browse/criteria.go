package browse

import (
	"context"
	"fmt"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/provider"
	"github.com/newthinker/copyhub/internal/settings"
	"go.uber.org/zap"
)

// SetCoin filters by quote asset. "ALL" or "" clears the clause.
func (s *Session) SetCoin(ctx context.Context, coin string) error {
	coin = orAll(coin)
	s.update(func() { s.filters.Coin = coin })
	return s.persist(ctx, func(st *settings.Settings) { st.Browse.Quote = coin })
}

// SetExchange filters by exchange name.
func (s *Session) SetExchange(ctx context.Context, exchange string) error {
	exchange = orAll(exchange)
	s.update(func() { s.filters.Exchange = exchange })
	return s.persist(ctx, func(st *settings.Settings) { st.Browse.Exchange = exchange })
}

// SetExchangeType filters by exchange type.
func (s *Session) SetExchangeType(ctx context.Context, exchangeType string) error {
	exchangeType = orAll(exchangeType)
	s.update(func() { s.filters.ExchangeType = exchangeType })
	return s.persist(ctx, func(st *settings.Settings) { st.Browse.ExchangeType = exchangeType })
}

// SetFilters replaces all three filter clauses at once.
func (s *Session) SetFilters(ctx context.Context, f provider.FilterCriteria) error {
	f = provider.FilterCriteria{
		Coin:         orAll(f.Coin),
		Exchange:     orAll(f.Exchange),
		ExchangeType: orAll(f.ExchangeType),
	}
	s.update(func() { s.filters = f })
	return s.persist(ctx, func(st *settings.Settings) {
		st.Browse = settings.Browse{Quote: f.Coin, Exchange: f.Exchange, ExchangeType: f.ExchangeType}
	})
}

// ClearFilters resets every filter clause to ALL.
func (s *Session) ClearFilters(ctx context.Context) error {
	return s.SetFilters(ctx, provider.DefaultFilters())
}

// SetSort applies a "KEY_DIRECTION" token. An invalid token is rejected and the state is
// left unchanged. Sort is not saved for connected pages.
func (s *Session) SetSort(ctx context.Context, token string) error {
	sc, err := provider.ParseSort(token)
	if err != nil {
		return err
	}
	return s.applySort(ctx, sc)
}

// ClearSort restores the default sort.
func (s *Session) ClearSort(ctx context.Context) error {
	return s.applySort(ctx, provider.DefaultSort)
}

func (s *Session) applySort(ctx context.Context, sc provider.SortCriteria) error {
	s.update(func() { s.sort = sc })
	if s.page.Connected() {
		return nil
	}
	return s.persist(ctx, func(st *settings.Settings) { st.SetSort(string(s.page), sc.String()) })
}

// SetTimeFrame changes the time-frame in days, saves it and reloads. Any load still in
// flight for the previous time-frame is discarded.
func (s *Session) SetTimeFrame(ctx context.Context, days int) error {
	if days <= 0 {
		return core.WrapError(core.ErrInvalidCriteria, fmt.Errorf("time frame must be positive, got %d", days))
	}

	s.mu.Lock()
	if s.timeFrame == days && s.source != nil {
		s.mu.Unlock()
		return nil
	}
	s.timeFrame = days
	s.seq++
	s.mu.Unlock()

	if err := s.persist(ctx, func(st *settings.Settings) { st.SetTimeFrame(string(s.page), days) }); err != nil {
		s.deps.Logger.Warn("failed to save time frame", zap.Error(err))
	}
	return s.Load(ctx)
}

// update mutates criteria and recomputes the derived list under the write lock.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	s.recompute()
	listed := len(s.list)
	loaded := s.source != nil
	s.mu.Unlock()

	if loaded && s.deps.Recorder != nil {
		s.deps.Recorder.SetProvidersListed(string(s.page), listed)
	}
}

func (s *Session) persist(ctx context.Context, fn func(*settings.Settings)) error {
	if s.deps.Settings == nil {
		return nil
	}
	return s.deps.Settings.Update(ctx, fn)
}
