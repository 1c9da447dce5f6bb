package provider

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/alphavantage"
	"github.com/richmondnkrumah/Data-Scraper/pkg/companiesmarketcap"
	"github.com/richmondnkrumah/Data-Scraper/pkg/finnhub"
	"github.com/richmondnkrumah/Data-Scraper/pkg/yahoo"
)

type fakeAlphaVantage struct {
	matches  []alphavantage.Match
	overview *alphavantage.Overview
	symbol   string
}

func (f *fakeAlphaVantage) SymbolSearch(context.Context, string) ([]alphavantage.Match, error) {
	return f.matches, nil
}

func (f *fakeAlphaVantage) Overview(_ context.Context, symbol string) (*alphavantage.Overview, error) {
	f.symbol = symbol
	return f.overview, nil
}

func TestAlphaVantage_PrefersUSListing(t *testing.T) {
	a := NewAlphaVantage(&fakeAlphaVantage{matches: []alphavantage.Match{
		{Symbol: "APC.DEX", Region: "Frankfurt"},
		{Symbol: "AAPL", Region: "United States"},
	}}, true)

	sym, err := a.ResolveSymbol(context.Background(), "Apple")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", sym)
}

func TestAlphaVantage_FallsBackToFirstMatch(t *testing.T) {
	a := NewAlphaVantage(&fakeAlphaVantage{matches: []alphavantage.Match{{Symbol: "SAP.DEX", Region: "Frankfurt"}}}, true)
	sym, err := a.ResolveSymbol(context.Background(), "SAP")
	require.NoError(t, err)
	assert.Equal(t, "SAP.DEX", sym)

	_, err = NewAlphaVantage(&fakeAlphaVantage{}, true).ResolveSymbol(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAlphaVantage_FetchMapsOverview(t *testing.T) {
	fake := &fakeAlphaVantage{overview: &alphavantage.Overview{
		Symbol:               "AAPL",
		Name:                 "Apple Inc",
		Industry:             "ELECTRONIC COMPUTERS",
		Address:              "ONE APPLE PARK WAY, CUPERTINO, CA, US",
		FullTimeEmployees:    "164000",
		MarketCapitalization: "3000000000000",
		ProfitMargin:         "0.246",
		PERatio:              "None",
	}}
	p, err := NewAlphaVantage(fake, true).Fetch(context.Background(), Query{Name: "Apple", Symbol: "AAPL"})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", fake.symbol)
	assert.Equal(t, model.UnitsAbsolute, p.Units)
	assert.Equal(t, "Electronic Computers", p.Industry)
	assert.Equal(t, "One Apple Park Way, Cupertino, Ca, Us", p.Headquarters)
	assert.Equal(t, "164,000 employees", p.Size)
	assert.Equal(t, 3e12, *p.Financials.MarketCap)
	assert.Equal(t, 0.246, *p.Financials.ProfitMargin)
	assert.Nil(t, p.Financials.PERatio)
}

func TestAlphaVantage_EmptyOverviewIsNoData(t *testing.T) {
	_, err := NewAlphaVantage(&fakeAlphaVantage{overview: &alphavantage.Overview{}}, true).
		Fetch(context.Background(), Query{Symbol: "ZZZZ"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestNilClientDisablesAdapter(t *testing.T) {
	assert.False(t, NewAlphaVantage(nil, true).Enabled())
	assert.False(t, NewFinnhub(nil, true).Enabled())
	assert.False(t, NewYahoo(nil, true).Enabled())
	assert.False(t, NewCompaniesMarketCap(nil, true).Enabled())
	assert.False(t, NewWebsite(nil, true).Enabled())
	assert.False(t, NewMistral(nil, "", true).Enabled())
	assert.False(t, NewAlphaVantage(&fakeAlphaVantage{}, false).Enabled())
}

type fakeFinnhub struct {
	results  []finnhub.SearchResult
	profile  *finnhub.Profile
	quote    *finnhub.Quote
	metrics  finnhub.Metrics
	quoteErr error
}

func (f *fakeFinnhub) Search(context.Context, string) ([]finnhub.SearchResult, error) {
	return f.results, nil
}
func (f *fakeFinnhub) Profile(context.Context, string) (*finnhub.Profile, error) { return f.profile, nil }
func (f *fakeFinnhub) Quote(context.Context, string) (*finnhub.Quote, error) {
	return f.quote, f.quoteErr
}
func (f *fakeFinnhub) Metrics(context.Context, string) (finnhub.Metrics, error) { return f.metrics, nil }

func TestFinnhub_ResolveSymbolPrefersCommonStock(t *testing.T) {
	f := NewFinnhub(&fakeFinnhub{results: []finnhub.SearchResult{
		{Symbol: "AAPL.MX", Type: "ADR"},
		{Symbol: "AAPL", Type: "Common Stock"},
	}}, true)
	sym, err := f.ResolveSymbol(context.Background(), "Apple")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", sym)
}

func TestFinnhub_FetchScalesAndConvertsPercent(t *testing.T) {
	f := NewFinnhub(&fakeFinnhub{
		profile: &finnhub.Profile{Name: "Apple Inc", Ticker: "AAPL", IPO: "1980-12-12", MarketCapitalization: 3_000_000},
		metrics: finnhub.Metrics{"peTTM": 30.5, "netProfitMarginTTM": 24.6, "beta": nil},
		quoteErr: eris.New("quote down"),
	}, true)

	p, err := f.Fetch(context.Background(), Query{Name: "Apple", Symbol: "AAPL"})
	require.NoError(t, err)

	assert.Equal(t, 3e12, *p.Financials.MarketCap)
	assert.Equal(t, 30.5, *p.Financials.PERatio)
	assert.InDelta(t, 0.246, *p.Financials.ProfitMargin, 1e-9)
	assert.Nil(t, p.Financials.Beta)
	assert.Nil(t, p.Financials.StockPrice)
	require.NotNil(t, p.Founded)
	assert.Equal(t, 1980, *p.Founded)
}

func TestFinnhub_QuoteFields(t *testing.T) {
	f := NewFinnhub(&fakeFinnhub{
		profile: &finnhub.Profile{Name: "Apple Inc"},
		quote:   &finnhub.Quote{Current: 190, PreviousClose: 188, High: 0},
	}, true)

	p, err := f.Fetch(context.Background(), Query{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", *p.Financials.StockSymbol)
	assert.Equal(t, 190.0, *p.Financials.StockPrice)
	assert.Equal(t, 188.0, *p.Financials.PreviousClose)
	assert.Nil(t, p.Financials.DayHigh)
}

func TestFinnhub_EmptyProfileIsNoData(t *testing.T) {
	_, err := NewFinnhub(&fakeFinnhub{profile: &finnhub.Profile{}}, true).Fetch(context.Background(), Query{Symbol: "X"})
	assert.ErrorIs(t, err, ErrNoData)
}

type fakeYahoo struct {
	quotes  []yahoo.SearchQuote
	chart   *yahoo.Chart
	summary *yahoo.Summary
}

func (f *fakeYahoo) Search(context.Context, string) ([]yahoo.SearchQuote, error) { return f.quotes, nil }
func (f *fakeYahoo) Chart(context.Context, string, string, string) (*yahoo.Chart, error) {
	return f.chart, nil
}
func (f *fakeYahoo) Summary(context.Context, string) (*yahoo.Summary, error) {
	if f.summary == nil {
		return nil, eris.New("summary unavailable")
	}
	return f.summary, nil
}

func TestYahoo_ResolveSymbolRequiresEquity(t *testing.T) {
	y := NewYahoo(&fakeYahoo{quotes: []yahoo.SearchQuote{{Symbol: "^GSPC", QuoteType: "INDEX"}, {Symbol: "MSFT", QuoteType: "EQUITY"}}}, true)
	sym, err := y.ResolveSymbol(context.Background(), "Microsoft")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", sym)

	y = NewYahoo(&fakeYahoo{quotes: []yahoo.SearchQuote{{Symbol: "^GSPC", QuoteType: "INDEX"}}}, true)
	_, err = y.ResolveSymbol(context.Background(), "S&P")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahoo_FetchChartWithoutSummary(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	y := NewYahoo(&fakeYahoo{chart: &yahoo.Chart{
		Meta: yahoo.ChartMeta{LongName: "Microsoft Corporation", RegularMarketPrice: 410, ChartPreviousClose: 400},
		Points: []yahoo.Point{
			{Time: time.Date(2026, 9, 1, 9, 30, 0, 0, loc), Close: 400},
			{Time: time.Date(2026, 9, 2, 9, 30, 0, 0, loc), Close: 410},
		},
	}}, true)

	p, err := y.Fetch(context.Background(), Query{Symbol: "MSFT"})
	require.NoError(t, err)

	assert.Equal(t, 410.0, *p.Financials.StockPrice)
	assert.Equal(t, 400.0, *p.Financials.PreviousClose)
	require.Len(t, p.Financials.PriceHistory, 2)
	assert.Equal(t, time.UTC, p.Financials.PriceHistory[0].Date.Location())
	assert.Equal(t, 410.0, p.Financials.PriceHistory[1].Price)
}

func TestYahoo_NoPointsIsNoData(t *testing.T) {
	_, err := NewYahoo(&fakeYahoo{chart: &yahoo.Chart{}}, true).Fetch(context.Background(), Query{Symbol: "MSFT"})
	assert.ErrorIs(t, err, ErrNoData)
}

type fakeCMC struct {
	listings []companiesmarketcap.Listing
	pages    map[string]*companiesmarketcap.Page
}

func (f *fakeCMC) Search(context.Context, string) ([]companiesmarketcap.Listing, error) {
	return f.listings, nil
}

func (f *fakeCMC) Metric(_ context.Context, slug, metric string) (*companiesmarketcap.Page, error) {
	if p, ok := f.pages[slug+"/"+metric]; ok {
		return p, nil
	}
	return nil, eris.Errorf("no page %s/%s", slug, metric)
}

func TestPickListing(t *testing.T) {
	ls := []companiesmarketcap.Listing{
		{Name: "Apple Hospitality REIT", Symbol: "APLE", Slug: "apple-hospitality"},
		{Name: "Apple", Symbol: "AAPL", Slug: "apple"},
	}
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"symbol match", Query{Name: "whatever", Symbol: "aapl"}, "apple"},
		{"name match", Query{Name: "apple"}, "apple"},
		{"first row", Query{Name: "Apple Computer"}, "apple-hospitality"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := pickListing(ls, tt.q)
			require.True(t, ok)
			assert.Equal(t, tt.want, l.Slug)
		})
	}

	_, ok := pickListing(nil, Query{Name: "x"})
	assert.False(t, ok)
}

func TestCompaniesMarketCap_Fetch(t *testing.T) {
	c := NewCompaniesMarketCap(&fakeCMC{
		listings: []companiesmarketcap.Listing{{Name: "Apple", Symbol: "AAPL", Slug: "apple"}},
		pages: map[string]*companiesmarketcap.Page{
			"apple/marketcap": {Boxes: map[string]string{"marketcap": "$3.512 T", "share price": "$231.50", "country": "United States"}},
			"apple/revenue":   {Boxes: map[string]string{"revenue": "$394.32 B"}},
		},
	}, true)

	p, err := c.Fetch(context.Background(), Query{Name: "Apple"})
	require.NoError(t, err)
	assert.InEpsilon(t, 3.512e12, *p.Financials.MarketCap, 1e-9)
	assert.InEpsilon(t, 231.5, *p.Financials.StockPrice, 1e-9)
	assert.InEpsilon(t, 394.32e9, *p.Financials.Revenue, 1e-9)
	assert.Equal(t, "United States", p.Headquarters)
	assert.Equal(t, "AAPL", *p.Financials.StockSymbol)
}

func TestCompaniesMarketCap_MissingRevenuePageIsTolerated(t *testing.T) {
	c := NewCompaniesMarketCap(&fakeCMC{
		listings: []companiesmarketcap.Listing{{Name: "Acme", Slug: "acme"}},
		pages: map[string]*companiesmarketcap.Page{
			"acme/marketcap": {Boxes: map[string]string{"marketcap": "$850 M"}},
		},
	}, true)

	p, err := c.Fetch(context.Background(), Query{Name: "Acme"})
	require.NoError(t, err)
	assert.Nil(t, p.Financials.Revenue)
	assert.Nil(t, p.Financials.StockSymbol)
}
