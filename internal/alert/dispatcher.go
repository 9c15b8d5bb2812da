package alert

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recorder receives delivery outcomes; metrics.Registry implements it.
type Recorder interface {
	RecordAlert(notifier, status string)
}

// Dispatcher fans alerts out to the registry. Repeats of the same source and code inside
// the cooldown window are logged but not delivered.
type Dispatcher struct {
	registry *Registry
	cooldown time.Duration
	logger   *zap.Logger
	recorder Recorder

	lastSent map[string]time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewDispatcher creates a dispatcher. A nil registry logs alerts only.
func NewDispatcher(registry *Registry, cooldown time.Duration, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Dispatcher{
		registry: registry,
		cooldown: cooldown,
		logger:   logger,
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

// SetRecorder attaches a metrics recorder.
func (d *Dispatcher) SetRecorder(r Recorder) {
	d.recorder = r
}

// Error raises an error alert for source. It never fails the caller.
func (d *Dispatcher) Error(ctx context.Context, source string, err error) {
	d.Dispatch(ctx, FromError(source, err))
}

// Dispatch delivers a, subject to the cooldown. It reports whether notifiers were invoked.
func (d *Dispatcher) Dispatch(ctx context.Context, a Alert) bool {
	d.logger.Warn("alert raised",
		zap.String("id", a.ID),
		zap.String("source", a.Source),
		zap.String("code", a.Code),
		zap.String("message", a.Message),
	)

	if !d.claim(a.key()) {
		d.logger.Debug("alert suppressed by cooldown", zap.String("source", a.Source), zap.String("code", a.Code))
		if d.recorder != nil {
			d.recorder.RecordAlert("all", "suppressed")
		}
		return false
	}

	errs := d.registry.NotifyAll(ctx, a)
	for _, name := range d.registry.Names() {
		status := "sent"
		if err, failed := errs[name]; failed {
			status = "failed"
			d.logger.Error("notifier failed",
				zap.String("notifier", name),
				zap.String("alert_id", a.ID),
				zap.Error(err),
			)
		}
		if d.recorder != nil {
			d.recorder.RecordAlert(name, status)
		}
	}
	return true
}

// claim records a send for key unless one happened within the cooldown.
func (d *Dispatcher) claim(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.lastSent[key]; ok && d.cooldown > 0 && now.Sub(last) < d.cooldown {
		return false
	}
	d.lastSent[key] = now
	return true
}

// ClearCooldowns forgets every recorded send.
func (d *Dispatcher) ClearCooldowns() {
	d.mu.Lock()
	d.lastSent = make(map[string]time.Time)
	d.mu.Unlock()
}

// CleanupExpiredCooldowns removes entries older than the cooldown window.
func (d *Dispatcher) CleanupExpiredCooldowns() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	removed := 0
	for key, last := range d.lastSent {
		if now.Sub(last) >= d.cooldown {
			delete(d.lastSent, key)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine periodically drops expired cooldown entries until ctx is done.
func (d *Dispatcher) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := d.CleanupExpiredCooldowns(); removed > 0 {
					d.logger.Debug("cleaned up expired alert cooldowns", zap.Int("removed", removed))
				}
			}
		}
	}()
}
