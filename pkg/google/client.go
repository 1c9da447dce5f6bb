// Package google queries the Custom Search JSON API for images.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// Client performs Custom Search operations.
type Client interface {
	ImageSearch(ctx context.Context, query string, num int) (*SearchResponse, error)
}

// SearchResponse is the response from Custom Search.
type SearchResponse struct {
	Items []Item `json:"items"`
}

// Item is a single search result.
type Item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	MIME        string `json:"mime"`
	Image       struct {
		ContextLink string `json:"contextLink"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
	} `json:"image"`
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
	cx      string
	baseURL string
	http    *http.Client
}

// NewClient creates a Custom Search client for the engine cx.
func NewClient(apiKey, cx string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		cx:      cx,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ImageSearch(ctx context.Context, query string, num int) (*SearchResponse, error) {
	if num <= 0 || num > 10 {
		num = 8
	}
	params := url.Values{
		"key":        {c.apiKey},
		"cx":         {c.cx},
		"q":          {query},
		"searchType": {"image"},
		"num":        {strconv.Itoa(num)},
		"imgSize":    {"medium"},
		"safe":       {"active"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.StatusError{Provider: "google", Code: resp.StatusCode, Body: string(respBody)}
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}

	return &result, nil
}
