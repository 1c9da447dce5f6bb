// Package fetcher paces outbound provider calls.
package fetcher

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token bucket that backs off when a provider reports
// rate limiting and recovers on success. The rate moves between a quarter
// and twice its initial value.
type AdaptiveLimiter struct {
	name    string
	limiter *rate.Limiter

	mu      sync.Mutex
	current rate.Limit
	floor   rate.Limit
	ceiling rate.Limit
}

// NewAdaptiveLimiter creates a limiter allowing perSecond events with the
// given burst.
func NewAdaptiveLimiter(name string, perSecond rate.Limit, burst int) *AdaptiveLimiter {
	if burst < 1 {
		burst = 1
	}
	return &AdaptiveLimiter{
		name:    name,
		limiter: rate.NewLimiter(perSecond, burst),
		current: perSecond,
		floor:   perSecond / 4,
		ceiling: perSecond * 2,
	}
}

// PerMinute creates a limiter from a requests-per-minute budget. A
// non-positive budget means unlimited.
func PerMinute(name string, n float64) *AdaptiveLimiter {
	if n <= 0 {
		return NewAdaptiveLimiter(name, rate.Inf, 1)
	}
	burst := int(n / 10)
	return NewAdaptiveLimiter(name, rate.Limit(n/60), burst)
}

// Wait blocks until a call is allowed or ctx ends.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return eris.Wrapf(a.limiter.Wait(ctx), "fetcher: wait %s", a.name)
}

// OnSuccess raises the rate by 20%, up to the ceiling.
func (a *AdaptiveLimiter) OnSuccess() {
	a.adjust(1.2)
}

// OnRateLimit halves the rate, down to the floor.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.adjust(0.5)
	zap.L().Warn("fetcher: provider rate limited, slowing down",
		zap.String("provider", a.name),
		zap.Float64("per_second", float64(a.Limit())),
	)
}

func (a *AdaptiveLimiter) adjust(factor float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == rate.Inf {
		return
	}
	next := a.current * rate.Limit(factor)
	if next > a.ceiling {
		next = a.ceiling
	}
	if next < a.floor {
		next = a.floor
	}
	a.current = next
	a.limiter.SetLimit(next)
}

// Limit returns the current events-per-second rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Limiters holds one limiter per provider.
type Limiters struct {
	mu  sync.RWMutex
	set map[string]*AdaptiveLimiter
}

// NewLimiters builds limiters from per-minute budgets keyed by provider.
func NewLimiters(perMinute map[string]float64) *Limiters {
	l := &Limiters{set: make(map[string]*AdaptiveLimiter, len(perMinute))}
	for name, n := range perMinute {
		l.set[name] = PerMinute(name, n)
	}
	return l
}

// For returns the provider's limiter. Unknown providers are unlimited.
func (l *Limiters) For(name string) *AdaptiveLimiter {
	l.mu.RLock()
	lim, ok := l.set[name]
	l.mu.RUnlock()
	if ok {
		return lim
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.set[name]; ok {
		return lim
	}
	lim = PerMinute(name, 0)
	l.set[name] = lim
	return lim
}

// Names lists the configured providers in order.
func (l *Limiters) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.set))
	for name := range l.set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
