package monitoring

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/store"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Memory is the process memory picture in bytes.
type Memory struct {
	RSS       uint64 `json:"rss"`
	HeapTotal uint64 `json:"heapTotal"`
	HeapUsed  uint64 `json:"heapUsed"`
}

// StoreStatus reports record store connectivity.
type StoreStatus struct {
	Driver string `json:"driver"`
	Up     bool   `json:"up"`
	Error  string `json:"error,omitempty"`
}

// Snapshot holds a point-in-time view of service health.
type Snapshot struct {
	Status    string          `json:"status"`
	Uptime    float64         `json:"uptime"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Port      int             `json:"port"`
	Memory    Memory          `json:"memory"`
	APIs      map[string]bool `json:"apis"`

	Store           StoreStatus       `json:"store"`
	CachedCompanies int               `json:"cachedCompanies"`
	Breakers        map[string]string `json:"breakers,omitempty"`
}

// OpenBreakers lists the providers whose breaker is not closed.
func (s *Snapshot) OpenBreakers() []string {
	var out []string
	for name, state := range s.Breakers {
		if state != "closed" {
			out = append(out, name)
		}
	}
	return out
}

// AdapterLister reports which adapters are enabled.
type AdapterLister interface {
	Enabled() map[string]bool
}

// BreakerLister reports circuit breaker states by provider.
type BreakerLister interface {
	Snapshot() map[string]string
}

// Collector gathers health snapshots from the store, adapters and breakers.
// Adapters and breakers are optional.
type Collector struct {
	store    store.Store
	driver   string
	adapters AdapterLister
	breakers BreakerLister
	metrics  *Metrics
	started  time.Time
	port     atomic.Int64
	now      func() time.Time
}

// NewCollector creates a health collector.
func NewCollector(st store.Store, driver string, adapters AdapterLister, breakers BreakerLister, m *Metrics) *Collector {
	return &Collector{
		store:    st,
		driver:   driver,
		adapters: adapters,
		breakers: breakers,
		metrics:  m,
		started:  time.Now(),
		now:      time.Now,
	}
}

// SetPort records the port the server ended up listening on.
func (c *Collector) SetPort(port int) { c.port.Store(int64(port)) }

// Collect takes a snapshot. A store that fails to answer is reported as
// down, not returned as an error; only a failed company listing on a live
// store is an error.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	now := c.now()
	snap := &Snapshot{
		Status:    "OK",
		Uptime:    now.Sub(c.started).Seconds(),
		Timestamp: now.UTC(),
		Version:   Version,
		Port:      int(c.port.Load()),
		Memory:    readMemory(),
		APIs:      map[string]bool{},
		Store:     StoreStatus{Driver: c.driver, Up: true},
	}
	if c.adapters != nil {
		snap.APIs = c.adapters.Enabled()
	}
	if c.breakers != nil {
		snap.Breakers = c.breakers.Snapshot()
	}

	if err := c.store.Ping(ctx); err != nil {
		snap.Store.Up, snap.Store.Error = false, err.Error()
		c.metrics.StoreUp(false)
		return snap, nil
	}
	c.metrics.StoreUp(true)

	recs, err := c.store.ListCompanies(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list companies")
	}
	snap.CachedCompanies = len(recs)
	return snap, nil
}

func readMemory() Memory {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Memory{RSS: ms.Sys, HeapTotal: ms.HeapSys, HeapUsed: ms.HeapAlloc}
}
