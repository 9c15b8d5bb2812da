package browse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/provider"
	"github.com/newthinker/copyhub/internal/settings"
	"go.uber.org/zap"
)

// DefaultTimeFrame is used when no time-frame was saved for the page.
const DefaultTimeFrame = 90

// alertSource tags alerts raised by failed loads.
const alertSource = "providers"

// DataSource fetches provider lists.
type DataSource interface {
	Providers(ctx context.Context, q core.ProviderQuery) ([]core.Provider, error)
}

// Alerter raises user-facing error alerts. alert.Dispatcher implements it.
type Alerter interface {
	Error(ctx context.Context, source string, err error)
}

// Recorder receives load metrics. metrics.Registry implements it.
type Recorder interface {
	RecordProviderFetch(page, status string)
	SetProvidersListed(page string, n int)
}

// Config identifies the session.
type Config struct {
	Options
	Token      string
	ExchangeID string
}

// Deps are the session collaborators. Source is required.
type Deps struct {
	Source   DataSource
	Settings settings.Store
	Alerter  Alerter
	Recorder Recorder
	Logger   *zap.Logger
}

// State summarizes the session.
type State struct {
	Page      Page                    `json:"page"`
	TimeFrame int                     `json:"timeFrame"`
	Filters   provider.FilterCriteria `json:"filters"`
	Sort      string                  `json:"sort"`
	Loaded    bool                    `json:"loaded"`
	LoadedAt  time.Time               `json:"loadedAt,omitzero"`
	Total     int                     `json:"total"`
	Listed    int                     `json:"listed"`
}

// Session holds the unfiltered source snapshot fetched for the current time-frame and the
// derived filtered and sorted snapshot. Snapshots are replaced, never mutated, so slices
// returned by Providers stay valid after later changes.
type Session struct {
	cfg  Config
	page Page
	deps Deps

	mu        sync.RWMutex
	timeFrame int
	filters   provider.FilterCriteria
	sort      provider.SortCriteria
	source    []core.Provider
	list      []core.Provider
	loadedAt  time.Time
	seq       uint64
}

// NewSession creates a session initialized from saved settings. Settings failures are
// logged and the defaults used. No data is fetched until Load.
func NewSession(ctx context.Context, cfg Config, deps Deps) (*Session, error) {
	if deps.Source == nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("browse: data source is required"))
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	page := PageFor(cfg.Options)
	deps.Logger = deps.Logger.With(zap.String("page", string(page)))

	s := &Session{
		cfg:       cfg,
		page:      page,
		deps:      deps,
		timeFrame: DefaultTimeFrame,
		filters:   provider.DefaultFilters(),
		sort:      provider.DefaultSort,
	}

	if deps.Settings == nil {
		return s, nil
	}

	saved, err := deps.Settings.Load(ctx)
	if err != nil {
		deps.Logger.Warn("failed to load settings, using defaults", zap.Error(err))
		return s, nil
	}

	if tf := saved.TimeFrameFor(string(page)); tf > 0 {
		s.timeFrame = tf
	}
	s.filters = provider.FilterCriteria{
		Coin:         orAll(saved.Browse.Quote),
		Exchange:     orAll(saved.Browse.Exchange),
		ExchangeType: orAll(saved.Browse.ExchangeType),
	}
	if !page.Connected() {
		if token := saved.SortFor(string(page)); token != "" {
			if sc, err := provider.ParseSort(token); err == nil {
				s.sort = sc
			} else {
				deps.Logger.Warn("ignoring saved sort", zap.String("sort", token), zap.Error(err))
			}
		}
	}
	return s, nil
}

func orAll(v string) string {
	if v == "" {
		return provider.All
	}
	return v
}

// Page returns the session page.
func (s *Session) Page() Page {
	return s.page
}

// Load fetches the provider list for the current time-frame and replaces the source
// snapshot. On failure an alert is raised, the state is left unchanged and the error is
// returned. A load overtaken by a newer load or a time-frame change is discarded.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	q := s.query()
	s.mu.Unlock()

	fetched, err := s.deps.Source.Providers(ctx, q)
	if err != nil {
		s.recordFetch("error")
		s.deps.Logger.Error("provider load failed", zap.Int("time_frame", q.TimeFrame), zap.Error(err))
		if s.deps.Alerter != nil {
			s.deps.Alerter.Error(ctx, alertSource, err)
		}
		return err
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.recordFetch("superseded")
		s.deps.Logger.Debug("discarding superseded provider load", zap.Uint64("seq", seq))
		return nil
	}
	source := provider.Dedupe(fetched)
	if source == nil {
		source = []core.Provider{}
	}
	s.source = source
	s.loadedAt = time.Now()
	s.recompute()
	total, listed := len(s.source), len(s.list)
	s.mu.Unlock()

	s.recordFetch("success")
	if s.deps.Recorder != nil {
		s.deps.Recorder.SetProvidersListed(string(s.page), listed)
	}
	s.deps.Logger.Debug("providers loaded",
		zap.Int("time_frame", q.TimeFrame),
		zap.Int("fetched", len(fetched)),
		zap.Int("unique", total),
		zap.Int("listed", listed),
	)
	return nil
}

func (s *Session) query() core.ProviderQuery {
	scope := core.ScopeAll
	if s.page.Connected() {
		scope = core.ScopeConnected
	}
	return core.ProviderQuery{
		Token:           s.cfg.Token,
		Scope:           scope,
		ReadOnly:        true,
		CopyTradersOnly: s.cfg.CopyTradersOnly,
		TimeFrame:       s.timeFrame,
		ExchangeID:      s.cfg.ExchangeID,
	}
}

// recompute derives the filtered list from the source. Callers hold mu.
func (s *Session) recompute() {
	if s.source == nil {
		s.list = nil
		return
	}
	s.list = provider.Sort(provider.Filter(s.source, s.filters), s.sort)
}

func (s *Session) recordFetch(status string) {
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordProviderFetch(string(s.page), status)
	}
}

// Providers returns the filtered and sorted snapshot, nil before the first successful load.
func (s *Session) Providers() []core.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list
}

// State returns the current criteria and counts.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Page:      s.page,
		TimeFrame: s.timeFrame,
		Filters:   s.filters,
		Sort:      s.sort.String(),
		Loaded:    s.source != nil,
		LoadedAt:  s.loadedAt,
		Total:     len(s.source),
		Listed:    len(s.list),
	}
}
