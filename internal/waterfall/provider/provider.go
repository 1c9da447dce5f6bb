// Package provider defines the adapter boundary around external company
// data sources and one adapter per source.
package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// ErrNoData means the source answered but knows nothing about the company.
// It does not count against the source's circuit breaker.
var ErrNoData = eris.New("provider: no data")

// ErrDisabled is returned by adapters whose source is switched off or has
// no credentials.
var ErrDisabled = eris.New("provider: disabled")

// Query identifies the company being looked up. Symbol and Website are
// filled in as earlier tiers discover them.
type Query struct {
	Name    string
	Symbol  string
	Website string
}

// Adapter wraps one external source.
type Adapter interface {
	// Name is the provider label used in provenance and configuration.
	Name() string
	// Enabled reports whether the source is configured. A disabled adapter
	// is never called.
	Enabled() bool
	// Fetch returns whatever the source knows about the company.
	Fetch(ctx context.Context, q Query) (*model.PartialRecord, error)
}

// SymbolResolver is implemented by adapters that can map a company name to
// a ticker symbol.
type SymbolResolver interface {
	Adapter
	ResolveSymbol(ctx context.Context, name string) (string, error)
}

// Registry holds the available adapters by name.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter. Registering a name twice replaces the adapter
// but keeps its original position.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[a.Name()]; !ok {
		r.order = append(r.order, a.Name())
	}
	r.adapters[a.Name()] = a
}

// Get returns an adapter by name, or nil if not found.
func (r *Registry) Get(name string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[name]
}

// List returns all registered adapter names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Enabled maps every registered adapter name to its Enabled flag.
func (r *Registry) Enabled() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.adapters))
	for name, a := range r.adapters {
		out[name] = a.Enabled()
	}
	return out
}

// SymbolResolvers returns the enabled adapters that can resolve tickers, in
// registration order.
func (r *Registry) SymbolResolvers() []SymbolResolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []SymbolResolver
	for _, name := range r.order {
		if sr, ok := r.adapters[name].(SymbolResolver); ok && sr.Enabled() {
			out = append(out, sr)
		}
	}
	return out
}

// Names returns sorted adapter names. It is used for stable log output.
func (r *Registry) Names() []string {
	names := r.List()
	sort.Strings(names)
	return names
}
