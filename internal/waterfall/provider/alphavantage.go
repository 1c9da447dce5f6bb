package provider

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/alphavantage"
)

// AlphaVantage reads company overviews and resolves ticker symbols.
type AlphaVantage struct {
	client  alphavantage.Client
	enabled bool
}

// NewAlphaVantage wraps client. A nil client disables the adapter.
func NewAlphaVantage(client alphavantage.Client, enabled bool) *AlphaVantage {
	return &AlphaVantage{client: client, enabled: enabled && client != nil}
}

func (a *AlphaVantage) Name() string  { return "alphavantage" }
func (a *AlphaVantage) Enabled() bool { return a.enabled }

// ResolveSymbol prefers a United States listing and falls back to the best
// match.
func (a *AlphaVantage) ResolveSymbol(ctx context.Context, name string) (string, error) {
	matches, err := a.client.SymbolSearch(ctx, name)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", ErrNoData
	}
	for _, m := range matches {
		if m.Region == "United States" && m.Symbol != "" {
			return m.Symbol, nil
		}
	}
	return matches[0].Symbol, nil
}

func (a *AlphaVantage) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	symbol := q.Symbol
	if symbol == "" {
		var err error
		if symbol, err = a.ResolveSymbol(ctx, q.Name); err != nil {
			return nil, eris.Wrap(err, "alphavantage: resolve symbol")
		}
	}

	ov, err := a.client.Overview(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if ov == nil || ov.Symbol == "" {
		return nil, ErrNoData
	}

	n := alphavantage.Number
	p := &model.PartialRecord{
		Units:        model.UnitsAbsolute,
		OfficialName: ov.Name,
		Description:  ov.Description,
		Industry:     fromUpper(ov.Industry),
		Headquarters: fromUpper(ov.Address),
		Website:      ov.OfficialSite,
		Size:         employees(n(ov.FullTimeEmployees)),
		Financials: model.Financials{
			StockSymbol:     model.String(ov.Symbol),
			MarketCap:       n(ov.MarketCapitalization),
			Revenue:         n(ov.RevenueTTM),
			GrossProfit:     n(ov.GrossProfitTTM),
			ProfitMargin:    n(ov.ProfitMargin),
			OperatingMargin: n(ov.OperatingMarginTTM),
			PERatio:         n(ov.PERatio),
			TrailingPE:      n(ov.TrailingPE),
			ForwardPE:       n(ov.ForwardPE),
			PEGRatio:        n(ov.PEGRatio),
			PriceToBook:     n(ov.PriceToBookRatio),
			EPS:             n(ov.EPS),
			TrailingEPS:     n(ov.DilutedEPSTTM),
			ReturnOnAssets:  n(ov.ReturnOnAssetsTTM),
			ReturnOnEquity:  n(ov.ReturnOnEquityTTM),
			RevenueGrowth:   n(ov.QuarterlyRevenueGrowthYOY),
			EarningsGrowth:  n(ov.QuarterlyEarningsGrowthYOY),
			Beta:            n(ov.Beta),
			BookValue:       n(ov.BookValue),
		},
	}
	return p, nil
}

// fromUpper turns Alpha Vantage's all-caps strings into title case and
// leaves mixed-case strings alone.
func fromUpper(s string) string {
	if s == "" || s != strings.ToUpper(s) {
		return s
	}
	return titleCase(strings.ToLower(s))
}
