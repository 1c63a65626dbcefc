// Package scheduler runs the recurring maintenance sweeps: promoting
// scheduled content whose publish time has passed, purging trash past its
// retention window, and pruning expired sessions. It is the only writer
// besides the interactive lifecycle API, and it coordinates with it purely
// through conditional database writes — no locks, no shared state between
// ticks beyond the wall clock.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/janvanerven/pawtal/internal/models"
	"github.com/janvanerven/pawtal/internal/store"
)

const (
	// DefaultInterval is how often the sweeps run. Items are promoted or
	// purged with at most one tick's latency, never early.
	DefaultInterval = time.Minute

	// TrashRetention is how long a trashed item survives before the purge
	// sweep destroys it. The window gives admins a recovery period without
	// letting the table grow unbounded.
	TrashRetention = 30 * 24 * time.Hour
)

// Clock supplies the current time. Tests substitute a fixed clock so
// "time passing" is simulated instead of slept through.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Scheduler owns the background tick loop.
type Scheduler struct {
	contents *store.ContentStore
	sessions *store.SessionStore
	clock    Clock
	interval time.Duration
}

// New creates a scheduler. A nil clock means the system clock; a zero
// interval means DefaultInterval.
func New(contents *store.ContentStore, sessions *store.SessionStore, clock Clock, interval time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if interval == 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		contents: contents,
		sessions: sessions,
		clock:    clock,
		interval: interval,
	}
}

// Run ticks until the context is cancelled. Each tick is a fresh, fully
// isolated attempt: sweep failures are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs the three sweeps once. Sweeps are independent: a storage error
// in one is logged and the next still runs.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now()
	s.promoteSweep(ctx, now)
	s.purgeSweep(ctx, now)
	s.sessionSweep(ctx, now)
}

// promoteSweep publishes every scheduled item whose publish_at has passed.
// One conditional statement per kind; a row the interactive API published
// concurrently no longer matches the predicate and is skipped.
func (s *Scheduler) promoteSweep(ctx context.Context, now time.Time) {
	for _, kind := range []models.ContentKind{models.ContentKindPage, models.ContentKindArticle} {
		n, err := s.contents.PublishDue(ctx, kind, now)
		if err != nil {
			slog.Error("promotion sweep failed", "kind", kind, "error", err)
			continue
		}
		if n > 0 {
			slog.Info("published scheduled content", "kind", kind, "count", n)
		}
	}
}

// purgeSweep permanently deletes trashed items past the retention window.
func (s *Scheduler) purgeSweep(ctx context.Context, now time.Time) {
	cutoff := now.Add(-TrashRetention)
	for _, kind := range []models.ContentKind{models.ContentKindPage, models.ContentKindArticle} {
		n, err := s.contents.PurgeTrashed(ctx, kind, cutoff)
		if err != nil {
			slog.Error("purge sweep failed", "kind", kind, "error", err)
			continue
		}
		if n > 0 {
			slog.Info("purged expired trash", "kind", kind, "count", n)
		}
	}
}

// sessionSweep removes expired login sessions so the table stays lean.
func (s *Scheduler) sessionSweep(ctx context.Context, now time.Time) {
	n, err := s.sessions.DeleteExpired(ctx, now)
	if err != nil {
		slog.Error("session cleanup sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("pruned expired sessions", "count", n)
	}
}
