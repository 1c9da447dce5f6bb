// Package resilience guards calls to external providers with per-provider
// circuit breakers and bounded retries.
package resilience

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// State is the position of a circuit breaker.
type State int

const (
	// Closed lets calls through.
	Closed State = iota
	// Open rejects calls until the cool-down elapses.
	Open
	// HalfOpen lets one trial call through.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a call is rejected by an open breaker.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// BreakerConfig tunes a Breaker.
type BreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the
	// breaker. Default 5.
	Threshold int
	// Cooldown is how long an open breaker rejects calls. Default 60s.
	Cooldown time.Duration
	// Counts decides whether an error counts as a failure. Nil counts
	// every non-nil error.
	Counts func(err error) bool
	// OnChange is called with the provider name on every transition.
	OnChange func(name string, from, to State)
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.Threshold <= 0 {
		c.Threshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 60 * time.Second
	}
	if c.Counts == nil {
		c.Counts = func(err error) bool { return err != nil }
	}
	return c
}

// Breaker stops calling a provider that keeps failing.
type Breaker struct {
	name string
	cfg  BreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool

	now func() time.Time
}

// NewBreaker creates a closed breaker for the named provider.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	return &Breaker{name: name, cfg: cfg.withDefaults(), now: time.Now}
}

// Call runs fn unless the breaker is open.
func (b *Breaker) Call(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

// CallVal is Call for functions that return a value.
func CallVal[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.admit(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	b.record(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// State reports the current position, promoting an expired open breaker to
// half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return HalfOpen
	}
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset closes the breaker and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	b.setState(Closed)
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return eris.Wrapf(ErrCircuitOpen, "provider %s", b.name)
		}
		b.setState(HalfOpen)
		b.probing = true
		return nil
	case HalfOpen:
		if b.probing {
			return eris.Wrapf(ErrCircuitOpen, "provider %s probing", b.name)
		}
		b.probing = true
		return nil
	default:
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.cfg.Counts(err) {
		b.failures = 0
		b.probing = false
		b.setState(Closed)
		return
	}

	b.failures++
	b.probing = false
	if b.state == HalfOpen || b.failures >= b.cfg.Threshold {
		b.openedAt = b.now()
		b.setState(Open)
	}
}

// setState must be called with mu held.
func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.cfg.OnChange != nil {
		b.cfg.OnChange(b.name, from, to)
	}
}

// Breakers holds one breaker per provider, created on first use.
type Breakers struct {
	cfg BreakerConfig

	mu  sync.RWMutex
	set map[string]*Breaker
}

// NewBreakers creates an empty breaker set sharing cfg.
func NewBreakers(cfg BreakerConfig) *Breakers {
	return &Breakers{cfg: cfg, set: make(map[string]*Breaker)}
}

// For returns the breaker for the named provider.
func (bs *Breakers) For(name string) *Breaker {
	bs.mu.RLock()
	b, ok := bs.set[name]
	bs.mu.RUnlock()
	if ok {
		return b
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()
	if b, ok = bs.set[name]; ok {
		return b
	}
	b = NewBreaker(name, bs.cfg)
	bs.set[name] = b
	return b
}

// Snapshot returns each provider's state name, sorted by provider.
func (bs *Breakers) Snapshot() map[string]string {
	bs.mu.RLock()
	names := make([]string, 0, len(bs.set))
	for name := range bs.set {
		names = append(names, name)
	}
	bs.mu.RUnlock()
	sort.Strings(names)

	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = bs.For(name).State().String()
	}
	return out
}
