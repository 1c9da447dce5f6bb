// Package alphavantage is a minimal client for the Alpha Vantage query API.
package alphavantage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

const defaultBaseURL = "https://www.alphavantage.co"

// Client looks up ticker symbols and company overviews.
type Client interface {
	SymbolSearch(ctx context.Context, keywords string) ([]Match, error)
	Overview(ctx context.Context, symbol string) (*Overview, error)
}

// Match is one SYMBOL_SEARCH result.
type Match struct {
	Symbol     string `json:"1. symbol"`
	Name       string `json:"2. name"`
	Type       string `json:"3. type"`
	Region     string `json:"4. region"`
	Currency   string `json:"8. currency"`
	MatchScore string `json:"9. matchScore"`
}

// Overview is the OVERVIEW payload. Alpha Vantage sends every figure as a
// string and uses "None" or "-" for unknown values; use Number to read them.
type Overview struct {
	Symbol                     string `json:"Symbol"`
	Name                       string `json:"Name"`
	Description                string `json:"Description"`
	Exchange                   string `json:"Exchange"`
	Country                    string `json:"Country"`
	Sector                     string `json:"Sector"`
	Industry                   string `json:"Industry"`
	Address                    string `json:"Address"`
	OfficialSite               string `json:"OfficialSite"`
	FullTimeEmployees          string `json:"FullTimeEmployees"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	RevenueTTM                 string `json:"RevenueTTM"`
	GrossProfitTTM             string `json:"GrossProfitTTM"`
	ProfitMargin               string `json:"ProfitMargin"`
	OperatingMarginTTM         string `json:"OperatingMarginTTM"`
	PERatio                    string `json:"PERatio"`
	TrailingPE                 string `json:"TrailingPE"`
	ForwardPE                  string `json:"ForwardPE"`
	PEGRatio                   string `json:"PEGRatio"`
	PriceToBookRatio           string `json:"PriceToBookRatio"`
	EPS                        string `json:"EPS"`
	DilutedEPSTTM              string `json:"DilutedEPSTTM"`
	ReturnOnAssetsTTM          string `json:"ReturnOnAssetsTTM"`
	ReturnOnEquityTTM          string `json:"ReturnOnEquityTTM"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
	Beta                       string `json:"Beta"`
	BookValue                  string `json:"BookValue"`
}

// Number parses an Alpha Vantage numeric string. It returns nil for the
// API's placeholders and for anything unparsable.
func Number(s string) *float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "None", "-", "N/A":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
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

// NewClient creates an Alpha Vantage client.
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

type searchResponse struct {
	BestMatches []Match `json:"bestMatches"`
}

func (c *httpClient) SymbolSearch(ctx context.Context, keywords string) ([]Match, error) {
	var result searchResponse
	if err := c.query(ctx, url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {keywords}}, &result); err != nil {
		return nil, err
	}
	return result.BestMatches, nil
}

func (c *httpClient) Overview(ctx context.Context, symbol string) (*Overview, error) {
	var result Overview
	if err := c.query(ctx, url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// query calls /query and decodes into out. Throttled responses arrive as
// 200 with a Note or Information body and are reported as rate limited.
func (c *httpClient) query(ctx context.Context, params url.Values, out any) error {
	params.Set("apikey", c.apiKey)
	fn := params.Get("function")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "alphavantage: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "alphavantage: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "alphavantage: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &resilience.StatusError{Provider: "alphavantage", Code: resp.StatusCode, Body: string(body)}
	}

	var notice struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &notice); err != nil {
		return eris.Wrap(err, "alphavantage: unmarshal response")
	}
	if notice.Note != "" || notice.Information != "" {
		return eris.Wrapf(resilience.ErrRateLimited, "alphavantage: %s", strings.ToLower(fn))
	}
	if notice.ErrorMessage != "" {
		return eris.Errorf("alphavantage: %s: %s", strings.ToLower(fn), notice.ErrorMessage)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "alphavantage: unmarshal response")
	}
	return nil
}
