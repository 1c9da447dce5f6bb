package provider

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/fetcher"
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/internal/monitoring"
	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

// DefaultTimeout bounds one adapter call, retries included.
const DefaultTimeout = 15 * time.Second

// Guard is the adapter boundary. Every call is paced by the provider's rate
// limiter, gated by its circuit breaker, retried on transient failures and
// bounded by a timeout. Failures and panics are logged and counted, never
// returned.
type Guard struct {
	limiters *fetcher.Limiters
	breakers *resilience.Breakers
	metrics  *monitoring.Metrics
	timeout  time.Duration
	policy   func(name string) resilience.Policy
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLimiters sets the per-provider rate limiters.
func WithLimiters(l *fetcher.Limiters) GuardOption {
	return func(g *Guard) { g.limiters = l }
}

// WithBreakers sets the per-provider circuit breakers.
func WithBreakers(b *resilience.Breakers) GuardOption {
	return func(g *Guard) { g.breakers = b }
}

// WithMetrics sets the Prometheus instruments.
func WithMetrics(m *monitoring.Metrics) GuardOption {
	return func(g *Guard) { g.metrics = m }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) GuardOption {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithRetryPolicy overrides resilience.DefaultPolicy.
func WithRetryPolicy(fn func(name string) resilience.Policy) GuardOption {
	return func(g *Guard) { g.policy = fn }
}

// NewGuard creates a Guard. Without options it only applies the timeout,
// retries and panic recovery.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{timeout: DefaultTimeout, policy: resilience.DefaultPolicy}
	for _, o := range opts {
		o(g)
	}
	return g
}

// CountsAsFailure is the breaker failure predicate for adapters: a source
// with nothing to say, a switched-off source and a caller hanging up are
// not the source's fault.
func CountsAsFailure(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNoData), errors.Is(err, ErrDisabled), errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

// Fetch calls a.Fetch behind the boundary. It returns nil when the adapter
// is disabled, fails or returns nothing usable. Stage labels log lines.
func (g *Guard) Fetch(ctx context.Context, a Adapter, q Query, stage string) *model.PartialRecord {
	if a == nil {
		return nil
	}
	name := a.Name()
	if !a.Enabled() {
		g.metrics.ProviderCall(name, "skipped", 0)
		return nil
	}

	start := time.Now()
	p, err := guarded(ctx, g, name, func(ctx context.Context) (*model.PartialRecord, error) {
		return a.Fetch(ctx, q)
	})
	if err == nil && p.IsEmpty() {
		err = ErrNoData
	}
	if !g.observe(name, q.Name, stage, err, time.Since(start)) {
		return nil
	}
	return p
}

// ResolveSymbol calls sr.ResolveSymbol behind the boundary. It returns ""
// on any failure.
func (g *Guard) ResolveSymbol(ctx context.Context, sr SymbolResolver, name, stage string) string {
	if sr == nil || !sr.Enabled() {
		return ""
	}
	start := time.Now()
	sym, err := guarded(ctx, g, sr.Name(), func(ctx context.Context) (string, error) {
		return sr.ResolveSymbol(ctx, name)
	})
	if err == nil && sym == "" {
		err = ErrNoData
	}
	if !g.observe(sr.Name(), name, stage, err, time.Since(start)) {
		return ""
	}
	return sym
}

// observe counts and logs one outcome and reports whether it succeeded.
func (g *Guard) observe(name, company, stage string, err error, d time.Duration) bool {
	if g.breakers != nil {
		g.metrics.BreakerOpen(name, g.breakers.For(name).State() != resilience.Closed)
	}

	switch {
	case err == nil:
		g.metrics.ProviderCall(name, "ok", d)
		return true
	case errors.Is(err, ErrNoData):
		g.metrics.ProviderCall(name, "empty", d)
		zap.L().Debug("provider: no data",
			zap.String("company", company),
			zap.String("provider", name),
			zap.String("stage", stage),
		)
		return false
	case errors.Is(err, resilience.ErrCircuitOpen):
		g.metrics.ProviderCall(name, "open", d)
		zap.L().Debug("provider: circuit open, skipping",
			zap.String("company", company),
			zap.String("provider", name),
			zap.String("stage", stage),
		)
		return false
	case errors.Is(err, errPanic):
		g.metrics.ProviderCall(name, "panic", d)
	default:
		g.metrics.ProviderCall(name, "error", d)
	}

	zap.L().Warn("provider: call failed",
		zap.String("company", company),
		zap.String("provider", name),
		zap.String("stage", stage),
		zap.Duration("elapsed", d),
		zap.Error(err),
	)
	return false
}

var errPanic = eris.New("provider: panic")

func guarded[T any](ctx context.Context, g *Guard, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var lim *fetcher.AdaptiveLimiter
	if g.limiters != nil {
		lim = g.limiters.For(name)
		if err := lim.Wait(ctx); err != nil {
			return zero, err
		}
	}

	call := func(ctx context.Context) (T, error) {
		return resilience.Retry(ctx, g.policy(name), recovered(name, fn))
	}

	var (
		v   T
		err error
	)
	if g.breakers != nil {
		v, err = resilience.CallVal(ctx, g.breakers.For(name), call)
	} else {
		v, err = call(ctx)
	}

	if lim != nil {
		switch {
		case resilience.IsRateLimited(err):
			lim.OnRateLimit()
		case err == nil:
			lim.OnSuccess()
		}
	}
	return v, err
}

func recovered[T any](name string, fn func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (v T, err error) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v = zero
				err = eris.Wrapf(errPanic, "%s: %v", name, r)
			}
		}()
		return fn(ctx)
	}
}
