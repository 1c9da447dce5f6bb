package waterfall

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richmondnkrumah/Data-Scraper/internal/company"
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/internal/waterfall/provider"
)

// symbolStage labels symbol lookups in logs.
const symbolStage = "symbol"

// Executor runs the tier cascade for one company record.
type Executor struct {
	cfg      *Config
	registry *provider.Registry
	guard    *provider.Guard
	now      func() time.Time // injectable for testing
}

// NewExecutor creates a tier executor. A nil cfg uses DefaultConfig and a
// nil guard uses provider.NewGuard().
func NewExecutor(cfg *Config, registry *provider.Registry, guard *provider.Guard) *Executor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if guard == nil {
		guard = provider.NewGuard()
	}
	for _, t := range cfg.Tiers {
		for _, name := range t.Adapters {
			if registry.Get(name) == nil {
				zap.L().Warn("waterfall: tier names an unregistered adapter",
					zap.String("tier", t.Name),
					zap.String("provider", name),
				)
			}
		}
	}
	return &Executor{
		cfg:      cfg,
		registry: registry,
		guard:    guard,
		now:      time.Now,
	}
}

// WithNow sets a fixed time for testing.
func (e *Executor) WithNow(t time.Time) *Executor {
	e.now = func() time.Time { return t }
	return e
}

// Config returns the tier table in use.
func (e *Executor) Config() *Config { return e.cfg }

// Run fills rec tier by tier. Adapters within a tier are queried
// concurrently; their answers are merged one by one in configured order
// once the whole tier has returned, so the merge never races. A tier whose
// needs are already met is skipped. When ctx ends, before or during any
// tier, Run returns ctx.Err() and rec holds whatever was merged so far.
func (e *Executor) Run(ctx context.Context, rec *model.CompanyRecord) (*Result, error) {
	res := &Result{StartedAt: e.now()}

	e.resolveSymbol(ctx, rec, res)

	for _, tier := range e.cfg.Tiers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !tier.NeedsMore(rec) {
			res.Tiers = append(res.Tiers, TierResult{Name: tier.Name, Skipped: true})
			continue
		}
		tr := e.runTier(ctx, tier, rec)
		for _, a := range tr.Adapters {
			res.FieldsWritten += a.Fields
		}
		res.Tiers = append(res.Tiers, tr)
	}
	// Adapters swallow cancellation, so an empty last tier may only mean
	// the caller gave up.
	return res, ctx.Err()
}

func (e *Executor) runTier(ctx context.Context, tier Tier, rec *model.CompanyRecord) TierResult {
	start := time.Now()
	q := queryFor(rec)

	adapters := make([]provider.Adapter, 0, len(tier.Adapters))
	for _, name := range tier.Adapters {
		if a := e.registry.Get(name); a != nil {
			adapters = append(adapters, a)
		}
	}

	// The guard never returns an error, so the group is only a barrier.
	partials := make([]*model.PartialRecord, len(adapters))
	var g errgroup.Group
	for i, a := range adapters {
		g.Go(func() error {
			partials[i] = e.guard.Fetch(ctx, a, q, tier.Name)
			return nil
		})
	}
	_ = g.Wait()

	tr := TierResult{Name: tier.Name, Adapters: make([]AdapterResult, 0, len(adapters))}
	for i, a := range adapters {
		ar := AdapterResult{Provider: a.Name(), Answered: partials[i] != nil}
		if partials[i] != nil {
			ar.Fields = len(company.Merge(rec, partials[i], a.Name()))
		}
		tr.Adapters = append(tr.Adapters, ar)
	}
	tr.Duration = time.Since(start)

	zap.L().Debug("waterfall: tier complete",
		zap.String("company", rec.Name),
		zap.String("tier", tier.Name),
		zap.Duration("elapsed", tr.Duration),
		zap.Bool("needs_more", tier.NeedsMore(rec)),
	)
	return tr
}

// resolveSymbol asks each enabled symbol resolver in turn until one
// answers, and records the symbol with that resolver's provenance.
func (e *Executor) resolveSymbol(ctx context.Context, rec *model.CompanyRecord, res *Result) {
	if rec.Financials.StockSymbol != nil && *rec.Financials.StockSymbol != "" {
		res.Symbol = *rec.Financials.StockSymbol
		return
	}
	for _, sr := range e.registry.SymbolResolvers() {
		sym := e.guard.ResolveSymbol(ctx, sr, rec.Name, symbolStage)
		if sym == "" {
			continue
		}
		company.Merge(rec, &model.PartialRecord{Financials: model.Financials{StockSymbol: &sym}}, sr.Name())
		res.Symbol = sym
		res.SymbolSource = sr.Name()
		return
	}
}

func queryFor(rec *model.CompanyRecord) provider.Query {
	q := provider.Query{Name: rec.Name, Website: rec.Website}
	if rec.Financials.StockSymbol != nil {
		q.Symbol = *rec.Financials.StockSymbol
	}
	return q
}
