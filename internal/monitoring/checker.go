package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/config"
)

const defaultSweepInterval = 5 * time.Minute

// Checker watches the store and the provider breakers while the server
// runs and posts an alert to the webhook whenever a sweep finds the
// service degraded.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	every     time.Duration
}

// NewChecker sweeps every cfg.CheckIntervalSecs, or every five minutes when
// that is unset.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	every := time.Duration(cfg.CheckIntervalSecs) * time.Second
	if every <= 0 {
		every = defaultSweepInterval
	}
	return &Checker{collector: collector, alerter: alerter, every: every}
}

// Run blocks until ctx ends. The first sweep happens one interval after
// start, so a freshly booted server has time to warm its breakers.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().Named("health")
	log.Info("health: watching", zap.Duration("every", c.every))

	tick := time.NewTicker(c.every)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			c.sweep(ctx, log)
		case <-ctx.Done():
			log.Info("health: watch ended")
			return
		}
	}
}

// sweep takes one snapshot and reports how many alerts reached the webhook.
func (c *Checker) sweep(ctx context.Context, log *zap.Logger) int {
	snap, err := c.collector.Collect(ctx)
	if err != nil {
		log.Warn("health: snapshot unavailable", zap.Error(err))
		return 0
	}

	alerts := c.alerter.Evaluate(snap)
	if len(alerts) == 0 {
		return 0
	}

	delivered := c.alerter.SendAlerts(ctx, alerts)
	log.Warn("health: service degraded",
		zap.String("store", snap.Store.Driver),
		zap.Bool("store_up", snap.Store.Up),
		zap.Strings("open_breakers", snap.OpenBreakers()),
		zap.Int("alerts", len(alerts)),
		zap.Int("delivered", delivered),
	)
	return delivered
}
