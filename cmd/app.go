package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/compare"
	"github.com/richmondnkrumah/Data-Scraper/internal/config"
	"github.com/richmondnkrumah/Data-Scraper/internal/fetcher"
	"github.com/richmondnkrumah/Data-Scraper/internal/monitoring"
	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
	"github.com/richmondnkrumah/Data-Scraper/internal/resolver"
	"github.com/richmondnkrumah/Data-Scraper/internal/store"
	"github.com/richmondnkrumah/Data-Scraper/internal/waterfall"
	"github.com/richmondnkrumah/Data-Scraper/internal/waterfall/provider"
	"github.com/richmondnkrumah/Data-Scraper/pkg/alphavantage"
	anthropicpkg "github.com/richmondnkrumah/Data-Scraper/pkg/anthropic"
	"github.com/richmondnkrumah/Data-Scraper/pkg/companiesmarketcap"
	"github.com/richmondnkrumah/Data-Scraper/pkg/finnhub"
	"github.com/richmondnkrumah/Data-Scraper/pkg/gemini"
	"github.com/richmondnkrumah/Data-Scraper/pkg/google"
	"github.com/richmondnkrumah/Data-Scraper/pkg/mistral"
	"github.com/richmondnkrumah/Data-Scraper/pkg/perplexity"
	"github.com/richmondnkrumah/Data-Scraper/pkg/website"
	"github.com/richmondnkrumah/Data-Scraper/pkg/wikipedia"
	"github.com/richmondnkrumah/Data-Scraper/pkg/yahoo"
)

// appEnv holds everything the commands need, wired from config.
type appEnv struct {
	Store     store.Store
	Metrics   *monitoring.Metrics
	Registry  *provider.Registry
	Breakers  *resilience.Breakers
	Resolver  *resolver.Resolver
	Compare   *compare.Service
	Collector *monitoring.Collector
}

// Close waits for background refreshes and releases the store.
func (e *appEnv) Close() {
	if e.Resolver != nil {
		e.Resolver.Wait()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initApp opens the store and builds the provider cascade, resolver and
// comparison service. Callers should defer env.Close().
func initApp(ctx context.Context, c *config.Config) (*appEnv, error) {
	st, err := store.Open(ctx, c.Store, c.Cache)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	env, err := buildApp(c, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return env, nil
}

// buildApp wires every component around an open store.
func buildApp(c *config.Config, st store.Store) (*appEnv, error) {
	var metrics *monitoring.Metrics
	if c.Metrics.Enabled {
		metrics = monitoring.NewMetrics()
	}

	tiers := waterfall.DefaultConfig()
	if c.Resolver.TiersFile != "" {
		loaded, err := waterfall.LoadConfig(c.Resolver.TiersFile)
		if err != nil {
			return nil, err
		}
		tiers = loaded
	}

	reg := buildRegistry(c.Providers)
	breakers := resilience.NewBreakers(resilience.BreakerConfig{
		Threshold: c.Resolver.BreakerFailureThreshold,
		Cooldown:  seconds(c.Resolver.BreakerResetSecs),
		Counts:    provider.CountsAsFailure,
	})
	guard := provider.NewGuard(
		provider.WithLimiters(fetcher.NewLimiters(ratesPerMinute(c.Providers))),
		provider.WithBreakers(breakers),
		provider.WithMetrics(metrics),
		provider.WithTimeout(seconds(c.Resolver.AdapterTimeoutSecs)),
	)
	exec := waterfall.NewExecutor(tiers, reg, guard)

	ttl := minutes(c.Cache.TTLMinutes)
	res := resolver.New(st, exec, resolver.Options{
		TTL:                ttl,
		NegativeTTL:        minutes(c.Cache.NegativeTTLMinutes),
		RefreshTimeout:     seconds(c.Resolver.RefreshTimeoutSecs),
		ServeEstimatesOnly: c.Resolver.ServeEstimatesOnly,
		Metrics:            metrics,
	})

	enabled := 0
	for _, on := range reg.Enabled() {
		if on {
			enabled++
		}
	}
	zap.L().Info("providers configured",
		zap.Int("registered", len(reg.Names())),
		zap.Int("enabled", enabled),
		zap.Int("tiers", len(tiers.Tiers)),
	)

	return &appEnv{
		Store:     st,
		Metrics:   metrics,
		Registry:  reg,
		Breakers:  breakers,
		Resolver:  res,
		Compare:   compare.NewService(res, st, ttl, metrics),
		Collector: monitoring.NewCollector(st, c.Store.Driver, reg, breakers, metrics),
	}, nil
}

// buildRegistry creates one adapter per source. Market adapters register
// first so their symbol lookups are tried in that order.
func buildRegistry(p config.ProvidersConfig) *provider.Registry {
	reg := provider.NewRegistry()

	var av alphavantage.Client
	if p.AlphaVantage.Active(true) {
		av = alphavantage.NewClient(p.AlphaVantage.Key, alphavantage.WithBaseURL(p.AlphaVantage.BaseURL))
	}
	reg.Register(provider.NewAlphaVantage(av, p.AlphaVantage.Active(true)))

	var fh finnhub.Client
	if p.Finnhub.Active(true) {
		fh = finnhub.NewClient(p.Finnhub.Key, finnhub.WithBaseURL(p.Finnhub.BaseURL))
	}
	reg.Register(provider.NewFinnhub(fh, p.Finnhub.Active(true)))

	reg.Register(provider.NewYahoo(yahoo.NewClient(yahoo.WithBaseURL(p.Yahoo.BaseURL)), p.Yahoo.Active(false)))
	reg.Register(provider.NewCompaniesMarketCap(
		companiesmarketcap.NewClient(companiesmarketcap.WithBaseURL(p.CompaniesMarketCap.BaseURL)),
		p.CompaniesMarketCap.Active(false),
	))

	var mc mistral.Client
	if p.Mistral.Active(true) {
		mc = mistral.NewClient(p.Mistral.Key, mistral.WithBaseURL(p.Mistral.BaseURL), mistral.WithModel(p.Mistral.Model))
	}
	reg.Register(provider.NewMistral(mc, p.Mistral.Model, p.Mistral.Active(true)))

	var gc gemini.Client
	if p.Gemini.Active(true) {
		gc = gemini.NewClient(p.Gemini.Key, gemini.WithBaseURL(p.Gemini.BaseURL), gemini.WithModel(p.Gemini.Model))
	}
	reg.Register(provider.NewGemini(gc, p.Gemini.Active(true)))

	var pc perplexity.Client
	if p.Perplexity.Active(true) {
		pc = perplexity.NewClient(p.Perplexity.Key, perplexity.WithBaseURL(p.Perplexity.BaseURL), perplexity.WithModel(p.Perplexity.Model))
	}
	reg.Register(provider.NewPerplexity(pc, p.Perplexity.Model, p.Perplexity.Active(true)))

	var ac anthropicpkg.Client
	if p.Anthropic.Active(true) {
		opts := []anthropicpkg.Option{anthropicpkg.WithModel(p.Anthropic.Model)}
		if p.Anthropic.BaseURL != "" {
			opts = append(opts, anthropicpkg.WithBaseURL(p.Anthropic.BaseURL))
		}
		ac = anthropicpkg.NewClient(p.Anthropic.Key, opts...)
	}
	reg.Register(provider.NewAnthropic(ac, p.Anthropic.Model, p.Anthropic.Active(true)))

	reg.Register(provider.NewWikipedia(wikipedia.NewClient(wikipedia.WithBaseURL(p.Wikipedia.BaseURL)), p.Wikipedia.Active(false)))

	site := website.NewClient()
	reg.Register(provider.NewWebsite(site, p.Website.Active(false)))

	var search google.Client
	if p.Logo.GoogleKey != "" && p.Logo.GoogleCX != "" {
		search = google.NewClient(p.Logo.GoogleKey, p.Logo.GoogleCX, google.WithBaseURL(p.Logo.BaseURL))
	}
	reg.Register(provider.NewLogo(site, search, p.Logo.ClearbitURL, p.Logo.Active(false)))

	return reg
}

func ratesPerMinute(p config.ProvidersConfig) map[string]float64 {
	return map[string]float64{
		"alphavantage":       p.AlphaVantage.RatePerMinute,
		"finnhub":            p.Finnhub.RatePerMinute,
		"yahoo":              p.Yahoo.RatePerMinute,
		"companiesmarketcap": p.CompaniesMarketCap.RatePerMinute,
		"mistral":            p.Mistral.RatePerMinute,
		"gemini":             p.Gemini.RatePerMinute,
		"perplexity":         p.Perplexity.RatePerMinute,
		"anthropic":          p.Anthropic.RatePerMinute,
		"wikipedia":          p.Wikipedia.RatePerMinute,
		"website":            p.Website.RatePerMinute,
		"logo":               p.Logo.RatePerMinute,
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
