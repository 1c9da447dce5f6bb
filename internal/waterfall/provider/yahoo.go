package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/yahoo"
)

// Yahoo reads one month of daily closes and, when available, the quote
// summary statistics.
type Yahoo struct {
	client  yahoo.Client
	enabled bool
}

// NewYahoo wraps client. A nil client disables the adapter.
func NewYahoo(client yahoo.Client, enabled bool) *Yahoo {
	return &Yahoo{client: client, enabled: enabled && client != nil}
}

func (y *Yahoo) Name() string  { return "yahoo" }
func (y *Yahoo) Enabled() bool { return y.enabled }

// ResolveSymbol returns the first equity quote matching name.
func (y *Yahoo) ResolveSymbol(ctx context.Context, name string) (string, error) {
	quotes, err := y.client.Search(ctx, name)
	if err != nil {
		return "", err
	}
	for _, q := range quotes {
		if strings.EqualFold(q.QuoteType, "EQUITY") && q.Symbol != "" {
			return q.Symbol, nil
		}
	}
	return "", ErrNoData
}

func (y *Yahoo) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	symbol := q.Symbol
	if symbol == "" {
		var err error
		if symbol, err = y.ResolveSymbol(ctx, q.Name); err != nil {
			return nil, err
		}
	}

	chart, err := y.client.Chart(ctx, symbol, "1mo", "1d")
	if err != nil {
		return nil, err
	}
	if chart == nil || len(chart.Points) == 0 {
		return nil, ErrNoData
	}

	meta := chart.Meta
	p := &model.PartialRecord{
		Units:        model.UnitsAbsolute,
		OfficialName: meta.LongName,
		Financials: model.Financials{
			StockSymbol: model.String(symbol),
			StockPrice:  positive(meta.RegularMarketPrice),
			DayHigh:     positive(meta.RegularMarketDayHigh),
			DayLow:      positive(meta.RegularMarketDayLow),
			Volume:      positive(meta.RegularMarketVolume),
		},
	}
	if meta.PreviousClose > 0 {
		p.Financials.PreviousClose = positive(meta.PreviousClose)
	} else {
		p.Financials.PreviousClose = positive(meta.ChartPreviousClose)
	}
	p.Financials.PriceHistory = make([]model.PricePoint, 0, len(chart.Points))
	for _, pt := range chart.Points {
		p.Financials.PriceHistory = append(p.Financials.PriceHistory, model.PricePoint{Date: pt.Time.UTC(), Price: pt.Close})
	}

	// The summary endpoint is frequently gated; the chart alone is a result.
	sum, err := y.client.Summary(ctx, symbol)
	if err != nil {
		zap.L().Debug("yahoo: summary unavailable", zap.String("symbol", symbol), zap.Error(err))
		return p, nil
	}
	applySummary(p, sum)
	return p, nil
}

func applySummary(p *model.PartialRecord, s *yahoo.Summary) {
	if s == nil {
		return
	}
	f := &p.Financials
	sd, fd, ks, ap := s.SummaryDetail, s.FinancialData, s.KeyStatistics, s.AssetProfile

	if p.OfficialName == "" {
		p.OfficialName = s.Price.LongName
	}
	f.MarketCap = first(s.Price.MarketCap.Raw, sd.MarketCap.Raw)
	f.AverageVolume = sd.AverageVolume.Raw
	f.TrailingPE = sd.TrailingPE.Raw
	f.PERatio = sd.TrailingPE.Raw
	f.ForwardPE = sd.ForwardPE.Raw
	f.Beta = sd.Beta.Raw
	f.PriceToBook = first(ks.PriceToBook.Raw, sd.PriceToBook.Raw)

	f.Revenue = fd.TotalRevenue.Raw
	f.TotalRevenue = fd.TotalRevenue.Raw
	f.GrossProfit = fd.GrossProfits.Raw
	f.TotalCash = fd.TotalCash.Raw
	f.ProfitMargin = fd.ProfitMargins.Raw
	f.GrossMargin = fd.GrossMargins.Raw
	f.OperatingMargin = fd.OperatingMargins.Raw
	f.ReturnOnAssets = fd.ReturnOnAssets.Raw
	f.ReturnOnEquity = fd.ReturnOnEquity.Raw
	f.RevenueGrowth = fd.RevenueGrowth.Raw
	f.EarningsGrowth = fd.EarningsGrowth.Raw
	f.CurrentRatio = fd.CurrentRatio.Raw
	f.QuickRatio = fd.QuickRatio.Raw
	// Yahoo reports debt/equity as a percentage.
	if fd.DebtToEquity.Raw != nil {
		f.DebtToEquity = model.Float(*fd.DebtToEquity.Raw / 100)
	}

	f.EnterpriseValue = ks.EnterpriseValue.Raw
	f.PEGRatio = ks.PEGRatio.Raw
	f.TrailingEPS = ks.TrailingEPS.Raw
	f.EPS = ks.TrailingEPS.Raw
	f.BookValue = ks.BookValue.Raw
	f.ShortRatio = ks.ShortRatio.Raw

	p.Industry = ap.Industry
	p.Website = ap.Website
	p.Description = ap.LongBusinessSummary
	p.Headquarters = joinNonEmpty(", ", ap.City, ap.State, ap.Country)
	if ap.FullTimeEmployees > 0 {
		p.Size = employees(model.Float(float64(ap.FullTimeEmployees)))
	}
}

func first(vs ...*float64) *float64 {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, sep)
}
