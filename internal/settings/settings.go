// Package settings persists the user's browse selections between sessions.
package settings

import (
	"context"
	"maps"
	"time"
)

// Browse holds the provider filters, shared by every page.
type Browse struct {
	Quote        string `json:"quote,omitempty"`
	Exchange     string `json:"exchange,omitempty"`
	ExchangeType string `json:"exchangeType,omitempty"`
}

// Settings is the persisted document. Time-frame and sort are kept per page scope.
type Settings struct {
	TimeFrame map[string]int    `json:"timeFrame"`
	Sort      map[string]string `json:"sort"`
	Browse    Browse            `json:"browse"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// TimeFrameFor returns the saved time-frame for page, or 0 when unset.
func (s Settings) TimeFrameFor(page string) int {
	return s.TimeFrame[page]
}

// SortFor returns the saved sort token for page, or "" when unset.
func (s Settings) SortFor(page string) string {
	return s.Sort[page]
}

// SetTimeFrame records the time-frame for page.
func (s *Settings) SetTimeFrame(page string, days int) {
	if s.TimeFrame == nil {
		s.TimeFrame = make(map[string]int)
	}
	s.TimeFrame[page] = days
}

// SetSort records the sort token for page.
func (s *Settings) SetSort(page, token string) {
	if s.Sort == nil {
		s.Sort = make(map[string]string)
	}
	s.Sort[page] = token
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	c := s
	c.TimeFrame = maps.Clone(s.TimeFrame)
	c.Sort = maps.Clone(s.Sort)
	return c
}

// Store loads and updates the settings document.
type Store interface {
	// Load returns a copy of the current settings. A store with nothing saved returns
	// zero Settings.
	Load(ctx context.Context) (Settings, error)

	// Update applies fn to the current settings and saves the result.
	Update(ctx context.Context, fn func(*Settings)) error
}
