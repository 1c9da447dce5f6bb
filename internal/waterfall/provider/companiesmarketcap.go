package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/companiesmarketcap"
)

// CompaniesMarketCap scrapes market capitalization and revenue pages.
type CompaniesMarketCap struct {
	client  companiesmarketcap.Client
	enabled bool
}

// NewCompaniesMarketCap wraps client. A nil client disables the adapter.
func NewCompaniesMarketCap(client companiesmarketcap.Client, enabled bool) *CompaniesMarketCap {
	return &CompaniesMarketCap{client: client, enabled: enabled && client != nil}
}

func (c *CompaniesMarketCap) Name() string  { return "companiesmarketcap" }
func (c *CompaniesMarketCap) Enabled() bool { return c.enabled }

func (c *CompaniesMarketCap) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	listings, err := c.client.Search(ctx, q.Name)
	if err != nil {
		return nil, err
	}
	listing, ok := pickListing(listings, q)
	if !ok {
		return nil, ErrNoData
	}

	page, err := c.client.Metric(ctx, listing.Slug, "marketcap")
	if err != nil {
		return nil, err
	}

	p := &model.PartialRecord{
		Units:        model.UnitsAbsolute,
		OfficialName: listing.Name,
		Headquarters: page.Boxes["country"],
		Financials: model.Financials{
			MarketCap:  companiesmarketcap.ParseMoney(page.Boxes["marketcap"]),
			StockPrice: companiesmarketcap.ParseMoney(page.Boxes["share price"]),
		},
	}
	if listing.Symbol != "" {
		p.Financials.StockSymbol = model.String(listing.Symbol)
	}

	if rev, err := c.client.Metric(ctx, listing.Slug, "revenue"); err != nil {
		zap.L().Debug("companiesmarketcap: revenue page unavailable", zap.String("slug", listing.Slug), zap.Error(err))
	} else {
		p.Financials.Revenue = companiesmarketcap.ParseMoney(rev.Boxes["revenue"])
	}
	return p, nil
}

// pickListing prefers the row whose ticker matches the known symbol, then
// an exact name match, then the first row.
func pickListing(ls []companiesmarketcap.Listing, q Query) (companiesmarketcap.Listing, bool) {
	if len(ls) == 0 {
		return companiesmarketcap.Listing{}, false
	}
	if q.Symbol != "" {
		for _, l := range ls {
			if strings.EqualFold(l.Symbol, q.Symbol) {
				return l, true
			}
		}
	}
	key := model.NormalizeKey(q.Name)
	for _, l := range ls {
		if model.NormalizeKey(l.Name) == key {
			return l, true
		}
	}
	return ls[0], true
}
