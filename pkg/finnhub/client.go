// Package finnhub is a minimal client for the Finnhub stock API.
package finnhub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Client fetches company profiles, quotes and basic financials.
type Client interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
	Profile(ctx context.Context, symbol string) (*Profile, error)
	Quote(ctx context.Context, symbol string) (*Quote, error)
	Metrics(ctx context.Context, symbol string) (Metrics, error)
}

// SearchResult is one /search hit.
type SearchResult struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

// Profile is the /stock/profile2 payload. MarketCapitalization is in
// millions of the listing currency.
type Profile struct {
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
	Industry             string  `json:"finnhubIndustry"`
	IPO                  string  `json:"ipo"`
	Logo                 string  `json:"logo"`
	MarketCapitalization float64 `json:"marketCapitalization"`
	Name                 string  `json:"name"`
	ShareOutstanding     float64 `json:"shareOutstanding"`
	Ticker               string  `json:"ticker"`
	WebURL               string  `json:"weburl"`
}

// Quote is the /quote payload.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Metrics is the "metric" object of /stock/metric. Values are numbers or
// null; percentages are expressed as percent, not fractions.
type Metrics map[string]any

// Float returns the named metric, or nil when it is absent or not a number.
func (m Metrics) Float(key string) *float64 {
	v, ok := m[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

// Percent returns the named percent metric as a fraction.
func (m Metrics) Percent(key string) *float64 {
	v := m.Float(key)
	if v == nil {
		return nil
	}
	f := *v / 100
	return &f
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Finnhub client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
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

func (c *httpClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var out struct {
		Result []SearchResult `json:"result"`
	}
	if err := c.get(ctx, "/search", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (c *httpClient) Profile(ctx context.Context, symbol string) (*Profile, error) {
	var out Profile
	if err := c.get(ctx, "/stock/profile2", url.Values{"symbol": {symbol}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var out Quote
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Metrics(ctx context.Context, symbol string) (Metrics, error) {
	var out struct {
		Metric Metrics `json:"metric"`
	}
	if err := c.get(ctx, "/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}}, &out); err != nil {
		return nil, err
	}
	if out.Metric == nil {
		out.Metric = Metrics{}
	}
	return out.Metric, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "finnhub: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Finnhub-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "finnhub: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "finnhub: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &resilience.StatusError{Provider: "finnhub", Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "finnhub: unmarshal response")
	}
	return nil
}
