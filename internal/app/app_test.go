package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/newthinker/copyhub/internal/alert"
	"github.com/newthinker/copyhub/internal/browse"
	"github.com/newthinker/copyhub/internal/config"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/metrics"
	"github.com/newthinker/copyhub/internal/position"
	"github.com/newthinker/copyhub/internal/pricefeed"
	"github.com/newthinker/copyhub/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTradeAPI struct {
	mu        sync.Mutex
	calls     int
	lastQuery core.ProviderQuery
	list      []core.Provider
	err       error
	assets    []string
	exchanges []core.Exchange
	marketErr error
}

func (f *fakeTradeAPI) Providers(_ context.Context, q core.ProviderQuery) ([]core.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeTradeAPI) QuoteAssets(context.Context, string, string) ([]string, error) {
	return f.assets, f.marketErr
}

func (f *fakeTradeAPI) Exchanges(context.Context, string) ([]core.Exchange, error) {
	return f.exchanges, f.marketErr
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Send(_ context.Context, a alert.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return nil
}

func fixtures() []core.Provider {
	return []core.Provider{
		{ID: "a", Name: "Alpha", Quote: "USDT", Exchanges: []string{"binance"}, ExchangeType: core.ExchangeSpot, Returns: 10, CreatedAt: 1},
		{ID: "b", Name: "Beta", Quote: "BTC", Exchanges: []string{"kucoin"}, ExchangeType: core.ExchangeFutures, Returns: 30, CreatedAt: 2},
		{ID: "a", Name: "Alpha again", Quote: "USDT"},
		{ID: "c", Name: "Gamma", Quote: "USDT", Exchanges: []string{"kucoin"}, ExchangeType: core.ExchangeFutures, Returns: 20, CreatedAt: 3},
	}
}

func newTestApp(t *testing.T, api *fakeTradeAPI, feed pricefeed.Feed) (*App, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	registry := alert.NewRegistry()
	require.NoError(t, registry.Register(notifier))

	a, err := New(Deps{
		Source:   api,
		Market:   api,
		Settings: settings.NewMemoryStores(),
		Feed:     feed,
		Alerts:   alert.NewDispatcher(registry, 0, nil),
		Metrics:  metrics.NewRegistry(),
	}, time.Minute)
	require.NoError(t, err)
	return a, notifier
}

func ids(list []core.Provider) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func TestApp_New_RequiresSource(t *testing.T) {
	_, err := New(Deps{}, time.Minute)
	assert.True(t, errors.Is(err, core.ErrConfigMissing))
}

func TestApp_ListProviders(t *testing.T) {
	api := &fakeTradeAPI{list: fixtures()}
	a, _ := newTestApp(t, api, nil)
	ctx := context.Background()
	key := SessionKey{Options: browse.Options{CopyTradersOnly: true}, Token: "tok", ExchangeID: "ex"}

	res, err := a.ListProviders(ctx, ListRequest{Session: key})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(res.Providers))
	assert.Equal(t, browse.PageCopyTraders, res.State.Page)
	assert.Equal(t, "tok", api.lastQuery.Token)
	assert.Equal(t, 1, api.calls)

	// criteria changes reuse the loaded snapshot
	res, err = a.ListProviders(ctx, ListRequest{
		Session: key,
		Coin:    optional.Some("USDT"),
		Sort:    optional.Some("NAME_ASC"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(res.Providers))
	assert.Equal(t, 1, api.calls)

	// refresh forces a fetch
	_, err = a.ListProviders(ctx, ListRequest{Session: key, Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls)

	// a new time frame reloads once
	res, err = a.ListProviders(ctx, ListRequest{Session: key, TimeFrame: optional.Some(30)})
	require.NoError(t, err)
	assert.Equal(t, 3, api.calls)
	assert.Equal(t, 30, api.lastQuery.TimeFrame)
	assert.Equal(t, 30, res.State.TimeFrame)
}

func TestApp_ListProviders_InvalidSort(t *testing.T) {
	a, _ := newTestApp(t, &fakeTradeAPI{}, nil)
	_, err := a.ListProviders(context.Background(), ListRequest{Sort: optional.Some("SIZE_DESC")})
	assert.True(t, errors.Is(err, core.ErrInvalidSort))
}

func TestApp_ListProviders_FetchFailureAlerts(t *testing.T) {
	api := &fakeTradeAPI{err: core.ErrFetchFailed}
	a, notifier := newTestApp(t, api, nil)

	_, err := a.ListProviders(context.Background(), ListRequest{})
	require.Error(t, err)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, "FETCH_FAILED", notifier.alerts[0].Code)
	assert.Equal(t, "providers", notifier.alerts[0].Source)
}

func TestApp_SessionsAreKeyed(t *testing.T) {
	a, _ := newTestApp(t, &fakeTradeAPI{}, nil)
	ctx := context.Background()

	s1, err := a.Session(ctx, SessionKey{Token: "a"})
	require.NoError(t, err)
	s2, _ := a.Session(ctx, SessionKey{Token: "a"})
	s3, _ := a.Session(ctx, SessionKey{Token: "b"})
	s4, _ := a.Session(ctx, SessionKey{Token: "a", Options: browse.Options{ConnectedOnly: true}})

	assert.Same(t, s1, s2)
	assert.NotSame(t, s1, s3)
	assert.NotSame(t, s1, s4)
	assert.Equal(t, 3, a.Stats()["sessions"])
}

func TestApp_SettingsArePerToken(t *testing.T) {
	a, _ := newTestApp(t, &fakeTradeAPI{list: fixtures()}, nil)
	ctx := context.Background()

	_, err := a.ListProviders(ctx, ListRequest{
		Session:   SessionKey{Token: "alice"},
		Coin:      optional.Some("BTC"),
		Sort:      optional.Some("NAME_ASC"),
		TimeFrame: optional.Some(7),
	})
	require.NoError(t, err)

	// a fresh session for alice restores her choices
	require.Equal(t, 1, a.EvictIdleSessions(time.Now().Add(time.Hour)))
	alice, err := a.Session(ctx, SessionKey{Token: "alice"})
	require.NoError(t, err)
	st := alice.State()
	assert.Equal(t, 7, st.TimeFrame)
	assert.Equal(t, "BTC", st.Filters.Coin)
	assert.Equal(t, "NAME_ASC", st.Sort)

	bob, err := a.Session(ctx, SessionKey{Token: "bob"})
	require.NoError(t, err)
	st = bob.State()
	assert.Equal(t, browse.DefaultTimeFrame, st.TimeFrame)
	assert.Equal(t, "ALL", st.Filters.Coin)
	assert.Equal(t, "RETURNS_DESC", st.Sort)
}

// blockingStores stalls settings reads for one owner until release is closed.
type blockingStores struct {
	settings.Stores
	owner   string
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStores) For(owner string) settings.Store {
	store := b.Stores.For(owner)
	if owner != b.owner {
		return store
	}
	return blockingStore{Store: store, entered: b.entered, release: b.release}
}

type blockingStore struct {
	settings.Store
	entered chan struct{}
	release chan struct{}
}

func (s blockingStore) Load(ctx context.Context) (settings.Settings, error) {
	close(s.entered)
	<-s.release
	return s.Store.Load(ctx)
}

func TestApp_SlowSettingsDoNotBlockOtherSessions(t *testing.T) {
	stores := &blockingStores{
		Stores:  settings.NewMemoryStores(),
		owner:   "slow",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	a, err := New(Deps{Source: &fakeTradeAPI{}, Settings: stores}, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := a.Session(ctx, SessionKey{Token: "slow"})
		done <- err
	}()
	<-stores.entered

	fast := make(chan error, 1)
	go func() {
		_, err := a.Session(ctx, SessionKey{Token: "fast"})
		fast <- err
	}()
	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("session creation blocked behind a slow settings read")
	}

	close(stores.release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, a.Stats()["sessions"])
}

func TestApp_EvictIdleSessions(t *testing.T) {
	a, _ := newTestApp(t, &fakeTradeAPI{}, nil)
	_, err := a.Session(context.Background(), SessionKey{Token: "a"})
	require.NoError(t, err)

	assert.Equal(t, 0, a.EvictIdleSessions(time.Now()))
	assert.Equal(t, 1, a.EvictIdleSessions(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, a.Stats()["sessions"])
}

func TestApp_ClearFiltersAndSort(t *testing.T) {
	a, _ := newTestApp(t, &fakeTradeAPI{list: fixtures()}, nil)
	ctx := context.Background()
	key := SessionKey{}

	_, err := a.ListProviders(ctx, ListRequest{
		Session:  key,
		Exchange: optional.Some("kucoin"),
		Sort:     optional.Some("DATE_ASC"),
	})
	require.NoError(t, err)

	st, err := a.ClearFilters(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "ALL", st.Filters.Exchange)
	assert.Equal(t, 3, st.Listed)

	st, err = a.ClearSort(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "RETURNS_DESC", st.Sort)
}

func TestApp_Options(t *testing.T) {
	api := &fakeTradeAPI{
		assets:    []string{"USDT", "BTC"},
		exchanges: []core.Exchange{{Name: "Binance", Enabled: true}, {Name: "Off", Enabled: false}},
	}
	a, _ := newTestApp(t, api, nil)

	opts := a.Options(context.Background(), SessionKey{})
	assert.Len(t, opts.Coins, 3)
	assert.Len(t, opts.Exchanges, 2)
	assert.Len(t, opts.ExchangeTypes, 3)
	assert.Len(t, opts.Sorts, 8)

	connected := a.Options(context.Background(), SessionKey{Options: browse.Options{ConnectedOnly: true}})
	assert.Len(t, connected.Coins, 1, "connected pages only offer ALL")
}

func TestApp_Options_MarketFailure(t *testing.T) {
	api := &fakeTradeAPI{marketErr: core.ErrFetchFailed}
	a, notifier := newTestApp(t, api, nil)

	opts := a.Options(context.Background(), SessionKey{})
	assert.Len(t, opts.Coins, 1)
	assert.Len(t, opts.Exchanges, 1)
	assert.Len(t, notifier.alerts, 2)
}

func TestApp_ResolveEntry(t *testing.T) {
	feed := pricefeed.Static{"BTCUSDT": 20000}
	a, _ := newTestApp(t, &fakeTradeAPI{}, feed)
	ctx := context.Background()

	t.Run("prospective uses live price", func(t *testing.T) {
		e := a.ResolveEntry(ctx, EntryRequest{
			Position: optional.None[position.Entity](),
			Inputs:   position.Inputs{Price: "", Units: "3"},
			Symbol:   "BTCUSDT",
		})
		assert.Equal(t, position.ModeProspective, e.Mode)
		assert.Equal(t, 20000.0, e.EntryPrice)
		assert.Equal(t, 3.0, e.EntrySize)
	})

	t.Run("typed price wins over feed", func(t *testing.T) {
		e := a.ResolveEntry(ctx, EntryRequest{
			Position: optional.None[position.Entity](),
			Inputs:   position.Inputs{Price: "150"},
			Symbol:   "BTCUSDT",
		})
		assert.Equal(t, 150.0, e.EntryPrice)
	})

	t.Run("supplied last price skips feed", func(t *testing.T) {
		e := a.ResolveEntry(ctx, EntryRequest{
			Position: optional.None[position.Entity](),
			Inputs:   position.Inputs{LastPrice: 42},
			Symbol:   "BTCUSDT",
		})
		assert.Equal(t, 42.0, e.EntryPrice)
	})

	t.Run("feed failure degrades", func(t *testing.T) {
		e := a.ResolveEntry(ctx, EntryRequest{
			Position: optional.None[position.Entity](),
			Inputs:   position.Inputs{Units: "1"},
			Symbol:   "UNKNOWN",
		})
		assert.Equal(t, 0.0, e.EntryPrice)
		assert.Equal(t, 1.0, e.EntrySize)
	})

	t.Run("existing position ignores inputs", func(t *testing.T) {
		e := a.ResolveEntry(ctx, EntryRequest{
			Position: optional.Some(position.Entity{BuyPrice: 100, Amount: 2, PositionSizeQuote: 200, ProfitPercentage: 5}),
			Inputs:   position.Inputs{Price: "999"},
			Symbol:   "BTCUSDT",
		})
		assert.Equal(t, position.ModeExisting, e.Mode)
		assert.Equal(t, 100.0, e.EntryPrice)
		assert.Equal(t, 5.0, e.ProfitPercent)
	})
}

func TestApp_StartStop(t *testing.T) {
	a, _ := newTestApp(t, &fakeTradeAPI{}, nil)

	done := make(chan error, 1)
	go func() { done <- a.Start(context.Background()) }()

	require.Eventually(t, func() bool { return a.Stats()["running"] == true }, time.Second, time.Millisecond)
	assert.Error(t, a.Start(context.Background()), "cannot start twice")

	a.Stop()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("app did not stop")
	}
}

func TestBuild(t *testing.T) {
	cfg := config.Defaults()
	cfg.Settings.Type = "localfs"
	cfg.Settings.Path = t.TempDir()
	cfg.Alerts.Webhook = config.WebhookConfig{Enabled: true, URL: "http://127.0.0.1:1/hook"}

	a, err := Build(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, a.Metrics())
	assert.Equal(t, "binance", a.Stats()["feed"])

	cfg.Server.Port = 0
	_, err = Build(cfg, nil)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}
