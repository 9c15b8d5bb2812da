package app

import (
	"context"
	"sync"
	"time"

	"github.com/newthinker/copyhub/internal/browse"
)

// SessionKey identifies a browse session: one per page, trade token and exchange account.
type SessionKey struct {
	Options    browse.Options
	Token      string
	ExchangeID string
}

type sessionEntry struct {
	session  *browse.Session
	lastUsed time.Time
}

type sessionCache struct {
	mu      sync.Mutex
	entries map[SessionKey]*sessionEntry
}

func newSessionCache() *sessionCache {
	return &sessionCache{entries: make(map[SessionKey]*sessionEntry)}
}

// getOrCreate runs create without holding the lock. When two callers race on the same key the
// first insert wins and the other session is dropped.
func (c *sessionCache) getOrCreate(key SessionKey, now time.Time, create func() (*browse.Session, error)) (*browse.Session, bool, error) {
	if s, ok := c.get(key, now); ok {
		return s, false, nil
	}

	s, err := create()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.lastUsed = now
		return e.session, false, nil
	}
	c.entries[key] = &sessionEntry{session: s, lastUsed: now}
	return s, true, nil
}

func (c *sessionCache) get(key SessionKey, now time.Time) (*browse.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	e.lastUsed = now
	return e.session, true
}

func (c *sessionCache) evict(before time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if e.lastUsed.Before(before) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *sessionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Session returns the browse session for key, creating it from saved settings on first use.
func (a *App) Session(ctx context.Context, key SessionKey) (*browse.Session, error) {
	s, created, err := a.sessions.getOrCreate(key, time.Now(), func() (*browse.Session, error) {
		deps := browse.Deps{
			Source:   a.deps.Source,
			Settings: a.deps.Settings.For(key.Token),
			Alerter:  a.deps.Alerts,
			Logger:   a.logger,
		}
		if a.deps.Metrics != nil {
			deps.Recorder = a.deps.Metrics
		}
		return browse.NewSession(ctx, browse.Config{
			Options:    key.Options,
			Token:      key.Token,
			ExchangeID: key.ExchangeID,
		}, deps)
	})
	if err != nil {
		return nil, err
	}
	if created {
		a.recordSessions()
	}
	return s, nil
}
