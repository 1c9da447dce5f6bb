// Package companiesmarketcap scrapes company listings and headline figures
// from companiesmarketcap.com.
package companiesmarketcap

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

const (
	defaultBaseURL   = "https://companiesmarketcap.com"
	defaultUserAgent = "Mozilla/5.0 (compatible; data-scraper/1.0)"
)

// Client finds companies and reads their metric pages.
type Client interface {
	Search(ctx context.Context, query string) ([]Listing, error)
	Metric(ctx context.Context, slug, metric string) (*Page, error)
}

// Listing is one search result row.
type Listing struct {
	Name   string
	Symbol string
	// Slug is the first path segment of the company pages, e.g. "apple".
	Slug string
}

// Page is a parsed metric page. Boxes maps each info box label, lowercased,
// to its raw value text.
type Page struct {
	Title string
	Boxes map[string]string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default site URL.
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

// NewClient creates a companiesmarketcap scraper.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
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

func (c *httpClient) Search(ctx context.Context, query string) ([]Listing, error) {
	doc, err := c.fetch(ctx, "/search.do?"+url.Values{"query": {query}}.Encode())
	if err != nil {
		return nil, err
	}

	var out []Listing
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		name := strings.TrimSpace(row.Find(".company-name").First().Text())
		href, _ := row.Find("a[href]").First().Attr("href")
		slug := slugFromHref(href)
		if name == "" || slug == "" {
			return
		}
		out = append(out, Listing{
			Name:   name,
			Symbol: strings.TrimSpace(row.Find(".company-code").First().Text()),
			Slug:   slug,
		})
	})
	return out, nil
}

func (c *httpClient) Metric(ctx context.Context, slug, metric string) (*Page, error) {
	doc, err := c.fetch(ctx, "/"+url.PathEscape(slug)+"/"+url.PathEscape(metric)+"/")
	if err != nil {
		return nil, err
	}

	page := &Page{
		Title: strings.TrimSpace(doc.Find("h1").First().Text()),
		Boxes: make(map[string]string),
	}
	doc.Find(".info-box").Each(func(_ int, box *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(box.Find(".line2").First().Text()))
		value := strings.TrimSpace(box.Find(".line1").First().Text())
		if label != "" && value != "" {
			page.Boxes[label] = value
		}
	})
	return page, nil
}

func (c *httpClient) fetch(ctx context.Context, path string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "companiesmarketcap: create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "companiesmarketcap: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "companiesmarketcap: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.StatusError{Provider: "companiesmarketcap", Code: resp.StatusCode, Body: string(body)}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "companiesmarketcap: parse html")
	}
	return doc, nil
}

func slugFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

var moneyPattern = regexp.MustCompile(`(-?[\d,]*\.?\d+)\s*([TBMK])?`)

// ParseMoney reads figures such as "$3.512 T", "$394.32 B" or "28.4" into
// absolute units.
func ParseMoney(s string) *float64 {
	m := moneyPattern.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	switch m[2] {
	case "T":
		v *= 1e12
	case "B":
		v *= 1e9
	case "M":
		v *= 1e6
	case "K":
		v *= 1e3
	}
	return &v
}
