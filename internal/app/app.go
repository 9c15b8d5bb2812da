// Package app wires the provider browser and entry resolver to their collaborators.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/copyhub/internal/alert"
	"github.com/newthinker/copyhub/internal/browse"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/metrics"
	"github.com/newthinker/copyhub/internal/pricefeed"
	"github.com/newthinker/copyhub/internal/settings"
	"go.uber.org/zap"
)

// Market lists the option values offered by the provider filters.
type Market interface {
	QuoteAssets(ctx context.Context, token, exchangeID string) ([]string, error)
	Exchanges(ctx context.Context, token string) ([]core.Exchange, error)
}

// Deps are the application collaborators. Source is required.
type Deps struct {
	Source   browse.DataSource
	Market   Market
	Settings settings.Stores
	Feed     pricefeed.Feed
	Alerts   *alert.Dispatcher
	Metrics  *metrics.Registry
	Logger   *zap.Logger
}

// App is the main application orchestrator
type App struct {
	deps       Deps
	logger     *zap.Logger
	sessionTTL time.Duration

	sessions *sessionCache

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a new App instance
func New(deps Deps, sessionTTL time.Duration) (*App, error) {
	if deps.Source == nil {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("app: provider source is required"))
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Settings == nil {
		deps.Settings = settings.NewMemoryStores()
	}
	if deps.Alerts == nil {
		deps.Alerts = alert.NewDispatcher(nil, 0, deps.Logger)
	}

	return &App{
		deps:       deps,
		logger:     deps.Logger,
		sessionTTL: sessionTTL,
		sessions:   newSessionCache(),
	}, nil
}

// Metrics returns the metrics registry, nil when metrics are disabled.
func (a *App) Metrics() *metrics.Registry {
	return a.deps.Metrics
}

// Start runs background housekeeping until ctx is cancelled or Stop is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	a.logger.Info("copyhub starting", zap.Duration("session_ttl", a.sessionTTL))

	a.deps.Alerts.StartCleanupRoutine(ctx, time.Minute)

	interval := a.sweepInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("copyhub shutting down")
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			a.EvictIdleSessions(time.Now())
		}
	}
}

// Stop stops the housekeeping loop
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) sweepInterval() time.Duration {
	if a.sessionTTL <= 0 {
		return time.Minute
	}
	return max(a.sessionTTL/2, time.Second)
}

// EvictIdleSessions drops sessions not used since now minus the session TTL.
func (a *App) EvictIdleSessions(now time.Time) int {
	if a.sessionTTL <= 0 {
		return 0
	}
	removed := a.sessions.evict(now.Add(-a.sessionTTL))
	if removed > 0 {
		a.logger.Debug("evicted idle browse sessions", zap.Int("removed", removed))
	}
	a.recordSessions()
	return removed
}

func (a *App) recordSessions() {
	if a.deps.Metrics != nil {
		a.deps.Metrics.SetSessionsActive(a.sessions.len())
	}
}

// Stats returns application statistics
func (a *App) Stats() map[string]any {
	a.mu.Lock()
	running := a.running
	a.mu.Unlock()

	feed := ""
	if a.deps.Feed != nil {
		feed = a.deps.Feed.Name()
	}
	return map[string]any{
		"running":  running,
		"sessions": a.sessions.len(),
		"feed":     feed,
	}
}
