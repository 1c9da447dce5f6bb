package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper prunes entries older than the retention window on a fixed interval.
type Sweeper struct {
	store     Store
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewSweeper creates a background pruner. A zero interval defaults to one hour.
func NewSweeper(st Store, retention, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{store: st, retention: retention, interval: interval, now: time.Now}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "store.sweeper"))
	if s.retention <= 0 {
		log.Info("retention disabled, sweeper not started")
		return
	}
	log.Info("starting sweeper",
		zap.Duration("interval", s.interval),
		zap.Duration("retention", s.retention),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one prune pass and returns the number of removed entries.
func (s *Sweeper) Sweep(ctx context.Context) int {
	n, err := s.store.Prune(ctx, s.now().Add(-s.retention))
	if err != nil {
		zap.L().Error("store: prune failed", zap.Error(err))
		return n
	}
	if n > 0 {
		zap.L().Info("store: pruned expired entries", zap.Int("removed", n))
	}
	return n
}
