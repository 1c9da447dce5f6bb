// Package resolver turns a company name into a finalized, cached record.
package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/internal/monitoring"
	"github.com/richmondnkrumah/Data-Scraper/internal/store"
	"github.com/richmondnkrumah/Data-Scraper/internal/waterfall"
)

// Defaults applied by New for zero Options fields.
const (
	DefaultTTL            = 60 * time.Minute
	DefaultNegativeTTL    = 5 * time.Minute
	DefaultRefreshTimeout = 2 * time.Minute
)

// Options configures a Resolver.
type Options struct {
	TTL                time.Duration
	NegativeTTL        time.Duration
	RefreshTimeout     time.Duration
	ServeEstimatesOnly bool
	Metrics            *monitoring.Metrics
}

// Resolver checks the record cache, runs the tier cascade on a miss and
// finalizes and persists the result.
type Resolver struct {
	store   store.Store
	exec    *waterfall.Executor
	opts    Options
	metrics *monitoring.Metrics
	now     func() time.Time

	flight singleflight.Group

	mu         sync.Mutex
	negative   map[string]time.Time // key -> expiry
	refreshing map[string]bool
	bg         sync.WaitGroup
}

// New creates a Resolver.
func New(st store.Store, exec *waterfall.Executor, opts Options) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = DefaultNegativeTTL
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	return &Resolver{
		store:      st,
		exec:       exec,
		opts:       opts,
		metrics:    opts.Metrics,
		now:        time.Now,
		negative:   make(map[string]time.Time),
		refreshing: make(map[string]bool),
	}
}

// WithNow sets a fixed clock for testing.
func (r *Resolver) WithNow(fn func() time.Time) *Resolver {
	r.now = fn
	return r
}

// Resolve returns the fresh cached record for name, or resolves it. A stale
// cached record is returned immediately while a refresh runs in the
// background. A name no provider knows yields a *NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, name string) (*model.CompanyRecord, error) {
	start := time.Now()
	name = strings.TrimSpace(name)
	key := model.NormalizeKey(name)
	if key == "" {
		return nil, &NotFoundError{Name: name}
	}

	cached, err := r.store.GetCompany(ctx, key)
	if err != nil {
		// A broken cache degrades to a fresh resolution.
		zap.L().Warn("resolver: cache read failed", zap.String("company", name), zap.Error(err))
		r.metrics.CacheLookup("company", "error")
	}
	if cached != nil {
		if !store.IsStale(cached.LastUpdated, r.now(), r.opts.TTL) {
			r.metrics.CacheLookup("company", "hit")
			r.metrics.Resolution("cached", time.Since(start))
			return cached, nil
		}
		r.metrics.CacheLookup("company", "stale")
		r.refreshInBackground(ctx, name, key)
		r.metrics.Resolution("stale", time.Since(start))
		return cached, nil
	}

	if r.negativeHit(key) {
		r.metrics.CacheLookup("company", "negative")
		r.metrics.Resolution("not_found", time.Since(start))
		return nil, &NotFoundError{Name: name}
	}
	r.metrics.CacheLookup("company", "miss")

	rec, err := r.resolveShared(ctx, name, key)
	r.metrics.Resolution(outcome(err), time.Since(start))
	return rec, err
}

// Refresh re-resolves name regardless of what the cache holds.
func (r *Resolver) Refresh(ctx context.Context, name string) (*model.CompanyRecord, error) {
	start := time.Now()
	name = strings.TrimSpace(name)
	key := model.NormalizeKey(name)
	if key == "" {
		return nil, &NotFoundError{Name: name}
	}
	rec, err := r.resolveShared(ctx, name, key)
	r.metrics.Resolution(outcome(err), time.Since(start))
	return rec, err
}

// List returns every cached record.
func (r *Resolver) List(ctx context.Context) ([]model.CompanyRecord, error) {
	recs, err := r.store.ListCompanies(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "resolver: list companies")
	}
	return recs, nil
}

// Wait blocks until background refreshes finish.
func (r *Resolver) Wait() {
	r.bg.Wait()
}

// resolveShared collapses concurrent resolutions of one key into one run.
// The run is detached from any single caller and bounded by
// RefreshTimeout; a caller that gives up gets its own ctx error while the
// others keep waiting.
func (r *Resolver) resolveShared(ctx context.Context, name, key string) (*model.CompanyRecord, error) {
	ch := r.flight.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.RefreshTimeout)
		defer cancel()
		return r.resolve(fctx, name, key)
	})
	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "resolver: resolve %q", name)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.CompanyRecord), nil
	}
}

func (r *Resolver) resolve(ctx context.Context, name, key string) (*model.CompanyRecord, error) {
	log := zap.L().With(zap.String("company", name))

	rec := model.NewCompanyRecord(name)
	res, err := r.exec.Run(ctx, rec)
	if err != nil {
		return nil, eris.Wrapf(err, "resolver: resolve %q", name)
	}

	usable := Finalize(rec, r.now())
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "resolver: resolve %q", name)
	}
	if !usable && !r.opts.ServeEstimatesOnly {
		r.markNegative(key)
		log.Info("resolver: no data retrieved", zap.Strings("tried", attempted(res)))
		return nil, &NotFoundError{Name: name, Placeholder: rec}
	}
	r.clearNegative(key)

	if err := r.store.PutCompany(ctx, key, rec); err != nil {
		log.Warn("resolver: cache write failed", zap.Error(err))
	}
	log.Info("resolver: resolved",
		zap.String("data_source", rec.DataSource),
		zap.Strings("answered", res.Answered()),
		zap.Int("fields", res.FieldsWritten),
		zap.Duration("elapsed", time.Since(res.StartedAt)),
	)
	return rec, nil
}

// refreshInBackground re-resolves key unless a refresh is already running.
// The refresh outlives the request that noticed the stale record.
func (r *Resolver) refreshInBackground(ctx context.Context, name, key string) {
	r.mu.Lock()
	if r.refreshing[key] {
		r.mu.Unlock()
		return
	}
	r.refreshing[key] = true
	r.mu.Unlock()

	r.bg.Add(1)
	go func() {
		defer r.bg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.refreshing, key)
			r.mu.Unlock()
		}()

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.RefreshTimeout)
		defer cancel()
		if _, err := r.resolveShared(rctx, name, key); err != nil {
			zap.L().Warn("resolver: background refresh failed", zap.String("company", name), zap.Error(err))
		}
	}()
}

func (r *Resolver) negativeHit(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.negative[key]
	if !ok {
		return false
	}
	if r.now().After(exp) {
		delete(r.negative, key)
		return false
	}
	return true
}

func (r *Resolver) markNegative(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for k, exp := range r.negative {
		if now.After(exp) {
			delete(r.negative, k)
		}
	}
	r.negative[key] = now.Add(r.opts.NegativeTTL)
}

func (r *Resolver) clearNegative(key string) {
	r.mu.Lock()
	delete(r.negative, key)
	r.mu.Unlock()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

func attempted(res *waterfall.Result) []string {
	var out []string
	for _, t := range res.Tiers {
		for _, a := range t.Adapters {
			out = append(out, a.Provider)
		}
	}
	return out
}
