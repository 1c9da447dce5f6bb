// Package wikipedia reads page summaries and infoboxes from the Wikipedia
// REST and action APIs.
package wikipedia

import (
	"context"
	"encoding/json"
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
	defaultBaseURL   = "https://en.wikipedia.org"
	defaultUserAgent = "data-scraper/1.0 (company research)"
	notFoundType     = "https://mediawiki.org/wiki/HyperSwitch/errors/not_found"
)

// ErrNotFound is returned when no article matches.
var ErrNotFound = eris.New("wikipedia: page not found")

// Client reads Wikipedia articles.
type Client interface {
	Summary(ctx context.Context, title string) (*Summary, error)
	Search(ctx context.Context, query string) ([]SearchHit, error)
	Extract(ctx context.Context, title string) (string, error)
	Infobox(ctx context.Context, title string) (*Infobox, error)
}

// Summary is the REST page summary.
type Summary struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	Thumbnail   *Image `json:"thumbnail"`
	Original    *Image `json:"originalimage"`
}

// Image is a summary image.
type Image struct {
	Source string `json:"source"`
}

// SearchHit is one opensearch result.
type SearchHit struct {
	Title       string
	Description string
	URL         string
}

// Infobox holds the company infobox rows the adapters read. Fields keeps
// every header, lowercased, with its cell text.
type Infobox struct {
	Founded      *int
	Industry     string
	Headquarters string
	Revenue      *float64
	Employees    string
	Website      string
	Logo         string
	Fields       map[string]string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default wiki host.
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

// NewClient creates a Wikipedia client.
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

func (c *httpClient) Summary(ctx context.Context, title string) (*Summary, error) {
	path := "/api/rest_v1/page/summary/" + url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	var out Summary
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	if out.Type == notFoundType || (out.Extract == "" && out.Title == "") {
		return nil, ErrNotFound
	}
	return &out, nil
}

func (c *httpClient) Search(ctx context.Context, query string) ([]SearchHit, error) {
	params := url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {"5"},
		"namespace": {"0"},
		"format":    {"json"},
	}
	var raw []json.RawMessage
	if err := c.get(ctx, "/w/api.php?"+params.Encode(), &raw); err != nil {
		return nil, err
	}
	if len(raw) < 4 {
		return nil, eris.New("wikipedia: malformed opensearch response")
	}

	var titles, descs, urls []string
	for i, dst := range []*[]string{&titles, &descs, &urls} {
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return nil, eris.Wrap(err, "wikipedia: unmarshal opensearch")
		}
	}

	hits := make([]SearchHit, 0, len(titles))
	for i, t := range titles {
		h := SearchHit{Title: t}
		if i < len(descs) {
			h.Description = descs[i]
		}
		if i < len(urls) {
			h.URL = urls[i]
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func (c *httpClient) Extract(ctx context.Context, title string) (string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
		"format":      {"json"},
	}
	var out struct {
		Query struct {
			Pages map[string]struct {
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, "/w/api.php?"+params.Encode(), &out); err != nil {
		return "", err
	}
	for id, page := range out.Query.Pages {
		if id == "-1" || page.Extract == "" {
			continue
		}
		first, _, _ := strings.Cut(page.Extract, "\n")
		return strings.TrimSpace(first), nil
	}
	return "", ErrNotFound
}

func (c *httpClient) Infobox(ctx context.Context, title string) (*Infobox, error) {
	params := url.Values{
		"action":    {"parse"},
		"page":      {title},
		"prop":      {"text"},
		"redirects": {"1"},
		"format":    {"json"},
	}
	var out struct {
		Parse *struct {
			Text map[string]string `json:"text"`
		} `json:"parse"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := c.get(ctx, "/w/api.php?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	if out.Error != nil || out.Parse == nil {
		return nil, ErrNotFound
	}
	return ParseInfobox(out.Parse.Text["*"])
}

var (
	yearPattern  = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)
	moneyPattern = regexp.MustCompile(`(?i)(?:US)?\$\s?([\d,.]+)\s*(billion|million|trillion)`)
	refPattern   = regexp.MustCompile(`\[\d+\]`)
)

// ParseInfobox reads a company infobox out of rendered article HTML.
func ParseInfobox(html string) (*Infobox, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "wikipedia: parse html")
	}

	box := doc.Find(".infobox.vcard").First()
	if box.Length() == 0 {
		box = doc.Find(".infobox").First()
	}
	if box.Length() == 0 {
		return nil, ErrNotFound
	}

	ib := &Infobox{Fields: make(map[string]string)}
	box.Find("tr").Each(func(_ int, row *goquery.Selection) {
		header := strings.ToLower(cleanText(row.Find("th").First().Text()))
		cell := row.Find("td").First()
		value := cleanText(cell.Text())
		if header == "" || value == "" {
			return
		}
		ib.Fields[header] = value

		switch {
		case strings.HasPrefix(header, "founded") && ib.Founded == nil:
			if m := yearPattern.FindString(value); m != "" {
				if y, err := strconv.Atoi(m); err == nil {
					ib.Founded = &y
				}
			}
		case strings.Contains(header, "industry") && ib.Industry == "":
			ib.Industry = value
		case strings.Contains(header, "headquarters") && ib.Headquarters == "":
			ib.Headquarters = value
		case strings.Contains(header, "revenue") && ib.Revenue == nil:
			ib.Revenue = parseMoney(value)
		case strings.Contains(header, "employees") && ib.Employees == "":
			ib.Employees = value
		case strings.Contains(header, "website") && ib.Website == "":
			if href, ok := cell.Find("a[href]").First().Attr("href"); ok {
				ib.Website = absolute(href)
			} else {
				ib.Website = value
			}
		}
	})

	if src, ok := box.Find("img").First().Attr("src"); ok {
		ib.Logo = absolute(src)
	}
	return ib, nil
}

func parseMoney(s string) *float64 {
	m := moneyPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	switch strings.ToLower(m[2]) {
	case "trillion":
		v *= 1e12
	case "billion":
		v *= 1e9
	case "million":
		v *= 1e6
	}
	return &v
}

func cleanText(s string) string {
	s = refPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func absolute(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "wikipedia: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "wikipedia: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "wikipedia: read response")
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &resilience.StatusError{Provider: "wikipedia", Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "wikipedia: unmarshal response")
	}
	return nil
}
