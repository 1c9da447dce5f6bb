// Package yahoo reads the public Yahoo Finance chart, search and
// quoteSummary endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

const (
	defaultBaseURL   = "https://query1.finance.yahoo.com"
	defaultUserAgent = "Mozilla/5.0 (compatible; data-scraper/1.0)"
)

// summaryModules are the quoteSummary modules Summary requests.
var summaryModules = []string{"price", "summaryDetail", "financialData", "defaultKeyStatistics", "assetProfile"}

// Client reads quotes, price history and statistics.
type Client interface {
	Search(ctx context.Context, query string) ([]SearchQuote, error)
	Chart(ctx context.Context, symbol, rng, interval string) (*Chart, error)
	Summary(ctx context.Context, symbol string) (*Summary, error)
}

// SearchQuote is one /v1/finance/search quote.
type SearchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
	Exchange  string `json:"exchange"`
}

// Chart is the first chart result with nil closes dropped.
type Chart struct {
	Meta   ChartMeta
	Points []Point
}

// ChartMeta is the chart result metadata.
type ChartMeta struct {
	Symbol               string  `json:"symbol"`
	Currency             string  `json:"currency"`
	LongName             string  `json:"longName"`
	RegularMarketPrice   float64 `json:"regularMarketPrice"`
	ChartPreviousClose   float64 `json:"chartPreviousClose"`
	PreviousClose        float64 `json:"previousClose"`
	RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
	RegularMarketVolume  float64 `json:"regularMarketVolume"`
}

// Point is one close.
type Point struct {
	Time  time.Time
	Close float64
}

// Value is Yahoo's {"raw":..,"fmt":".."} number wrapper.
type Value struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// Summary is the subset of quoteSummary modules the adapters read.
type Summary struct {
	Price struct {
		LongName      string `json:"longName"`
		MarketCap     Value  `json:"marketCap"`
		RegularMarket Value  `json:"regularMarketPrice"`
	} `json:"price"`
	SummaryDetail struct {
		PreviousClose  Value `json:"previousClose"`
		DayLow         Value `json:"dayLow"`
		DayHigh        Value `json:"dayHigh"`
		Volume         Value `json:"volume"`
		AverageVolume  Value `json:"averageVolume"`
		TrailingPE     Value `json:"trailingPE"`
		ForwardPE      Value `json:"forwardPE"`
		Beta           Value `json:"beta"`
		MarketCap      Value `json:"marketCap"`
		PriceToBook    Value `json:"priceToBook"`
		DividendYield  Value `json:"dividendYield"`
		FiftyDayAvg    Value `json:"fiftyDayAverage"`
		TwoHundredDays Value `json:"twoHundredDayAverage"`
	} `json:"summaryDetail"`
	FinancialData struct {
		CurrentPrice     Value `json:"currentPrice"`
		TotalRevenue     Value `json:"totalRevenue"`
		GrossProfits     Value `json:"grossProfits"`
		TotalCash        Value `json:"totalCash"`
		ProfitMargins    Value `json:"profitMargins"`
		GrossMargins     Value `json:"grossMargins"`
		OperatingMargins Value `json:"operatingMargins"`
		ReturnOnAssets   Value `json:"returnOnAssets"`
		ReturnOnEquity   Value `json:"returnOnEquity"`
		RevenueGrowth    Value `json:"revenueGrowth"`
		EarningsGrowth   Value `json:"earningsGrowth"`
		DebtToEquity     Value `json:"debtToEquity"`
		CurrentRatio     Value `json:"currentRatio"`
		QuickRatio       Value `json:"quickRatio"`
	} `json:"financialData"`
	KeyStatistics struct {
		EnterpriseValue Value `json:"enterpriseValue"`
		PEGRatio        Value `json:"pegRatio"`
		TrailingEPS     Value `json:"trailingEps"`
		ForwardEPS      Value `json:"forwardEps"`
		BookValue       Value `json:"bookValue"`
		PriceToBook     Value `json:"priceToBook"`
		ShortRatio      Value `json:"shortRatio"`
	} `json:"defaultKeyStatistics"`
	AssetProfile struct {
		Industry            string `json:"industry"`
		Sector              string `json:"sector"`
		Website             string `json:"website"`
		City                string `json:"city"`
		State               string `json:"state"`
		Country             string `json:"country"`
		FullTimeEmployees   int    `json:"fullTimeEmployees"`
		LongBusinessSummary string `json:"longBusinessSummary"`
	} `json:"assetProfile"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Yahoo Finance client. The endpoints need no key.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string) ([]SearchQuote, error) {
	var out struct {
		Quotes []SearchQuote `json:"quotes"`
	}
	params := url.Values{"q": {query}, "quotesCount": {"5"}, "newsCount": {"0"}}
	if err := c.get(ctx, "/v1/finance/search", params, &out); err != nil {
		return nil, err
	}
	return out.Quotes, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta       ChartMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *httpClient) Chart(ctx context.Context, symbol, rng, interval string) (*Chart, error) {
	var out chartResponse
	params := url.Values{"range": {rng}, "interval": {interval}}
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params, &out); err != nil {
		return nil, err
	}
	if out.Chart.Error != nil {
		return nil, eris.Errorf("yahoo: chart %s: %s", symbol, out.Chart.Error.Description)
	}
	if len(out.Chart.Result) == 0 {
		return nil, eris.Errorf("yahoo: chart %s: empty result", symbol)
	}

	r := out.Chart.Result[0]
	chart := &Chart{Meta: r.Meta}
	if len(r.Indicators.Quote) == 0 {
		return chart, nil
	}
	closes := r.Indicators.Quote[0].Close
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		chart.Points = append(chart.Points, Point{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	return chart, nil
}

func (c *httpClient) Summary(ctx context.Context, symbol string) (*Summary, error) {
	var out struct {
		QuoteSummary struct {
			Result []Summary `json:"result"`
			Error  *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"quoteSummary"`
	}
	params := url.Values{"modules": {strings.Join(summaryModules, ",")}}
	if err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &out); err != nil {
		return nil, err
	}
	if out.QuoteSummary.Error != nil {
		return nil, eris.Errorf("yahoo: summary %s: %s", symbol, out.QuoteSummary.Error.Description)
	}
	if len(out.QuoteSummary.Result) == 0 {
		return nil, eris.Errorf("yahoo: summary %s: empty result", symbol)
	}
	return &out.QuoteSummary.Result[0], nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "yahoo: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "yahoo: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "yahoo: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &resilience.StatusError{Provider: "yahoo", Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "yahoo: unmarshal response")
	}
	return nil
}
