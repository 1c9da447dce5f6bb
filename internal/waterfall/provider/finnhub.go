package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/finnhub"
)

// Finnhub reads company profiles, quotes and basic financials.
type Finnhub struct {
	client  finnhub.Client
	enabled bool
}

// NewFinnhub wraps client. A nil client disables the adapter.
func NewFinnhub(client finnhub.Client, enabled bool) *Finnhub {
	return &Finnhub{client: client, enabled: enabled && client != nil}
}

func (f *Finnhub) Name() string  { return "finnhub" }
func (f *Finnhub) Enabled() bool { return f.enabled }

// ResolveSymbol returns the first common stock matching name.
func (f *Finnhub) ResolveSymbol(ctx context.Context, name string) (string, error) {
	results, err := f.client.Search(ctx, name)
	if err != nil {
		return "", err
	}
	for _, r := range results {
		if r.Type == "Common Stock" && r.Symbol != "" {
			return r.Symbol, nil
		}
	}
	if len(results) > 0 && results[0].Symbol != "" {
		return results[0].Symbol, nil
	}
	return "", ErrNoData
}

func (f *Finnhub) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	symbol := q.Symbol
	if symbol == "" {
		var err error
		if symbol, err = f.ResolveSymbol(ctx, q.Name); err != nil {
			return nil, err
		}
	}

	prof, err := f.client.Profile(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if prof == nil || prof.Name == "" {
		return nil, ErrNoData
	}

	p := &model.PartialRecord{
		Units:        model.UnitsAbsolute,
		OfficialName: prof.Name,
		Industry:     prof.Industry,
		Website:      prof.WebURL,
		Logo:         prof.Logo,
		Founded:      year(prof.IPO),
		Financials: model.Financials{
			StockSymbol: model.String(prof.Ticker),
		},
	}
	if prof.Ticker == "" {
		p.Financials.StockSymbol = model.String(symbol)
	}
	if prof.MarketCapitalization > 0 {
		p.Financials.MarketCap = model.Float(prof.MarketCapitalization * 1e6)
	}

	// Metrics and quotes enrich the profile; losing them is not a failure.
	if m, err := f.client.Metrics(ctx, symbol); err != nil {
		zap.L().Debug("finnhub: metrics unavailable", zap.String("symbol", symbol), zap.Error(err))
	} else {
		fin := &p.Financials
		fin.PERatio = m.Float("peTTM")
		fin.EPS = m.Float("epsTTM")
		fin.Beta = m.Float("beta")
		fin.CurrentRatio = m.Float("currentRatioQuarterly")
		fin.QuickRatio = m.Float("quickRatioQuarterly")
		fin.DebtToEquity = m.Float("totalDebt/totalEquityQuarterly")
		fin.PriceToBook = m.Float("pbQuarterly")
		fin.ProfitMargin = m.Percent("netProfitMarginTTM")
		fin.GrossMargin = m.Percent("grossMarginTTM")
		fin.OperatingMargin = m.Percent("operatingMarginTTM")
		fin.ReturnOnEquity = m.Percent("roeTTM")
		fin.ReturnOnAssets = m.Percent("roaTTM")
		fin.RevenueGrowth = m.Percent("revenueGrowthTTMYoy")
	}
	if quote, err := f.client.Quote(ctx, symbol); err != nil {
		zap.L().Debug("finnhub: quote unavailable", zap.String("symbol", symbol), zap.Error(err))
	} else if quote != nil {
		fin := &p.Financials
		fin.StockPrice = positive(quote.Current)
		fin.PreviousClose = positive(quote.PreviousClose)
		fin.DayHigh = positive(quote.High)
		fin.DayLow = positive(quote.Low)
	}
	return p, nil
}
