// Package website fetches a company homepage and pulls out its metadata,
// icons, social profiles and main text.
package website

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/resilience"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; data-scraper/1.0)"
	maxBodyBytes     = 4 << 20
)

// Client reads web pages.
type Client interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
	// ServesImage reports whether rawURL serves an image.
	ServesImage(ctx context.Context, rawURL string) (bool, error)
}

// Page is what a homepage says about its owner.
type Page struct {
	URL         string
	Title       string
	SiteName    string
	Description string
	OGImage     string
	Icons       []string
	Social      Social
	Headings    []string
	Text        string
}

// Social holds profile links found on the page.
type Social struct {
	Twitter   string
	LinkedIn  string
	Facebook  string
	Instagram string
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *httpClient) {
		c.userAgent = ua
	}
}

type httpClient struct {
	userAgent string
	http      *http.Client
}

// NewClient creates a website client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		userAgent: defaultUserAgent,
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

func (c *httpClient) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target, err := Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrap(err, "website: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "website: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "website: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.StatusError{Provider: "website", Code: resp.StatusCode, Body: string(body)}
	}

	base := resp.Request.URL
	page, err := parse(body, base)
	if err != nil {
		return nil, err
	}

	if article, err := readability.FromReader(bytes.NewReader(body), base); err == nil {
		page.Text = strings.Join(strings.Fields(article.TextContent), " ")
	}
	return page, nil
}

func parse(body []byte, base *url.URL) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "website: parse html")
	}

	page := &Page{
		URL:   base.String(),
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	meta := func(attr, name string) string {
		v, _ := doc.Find("meta[" + attr + "='" + name + "']").First().Attr("content")
		return strings.TrimSpace(v)
	}
	page.Description = meta("name", "description")
	if page.Description == "" {
		page.Description = meta("property", "og:description")
	}
	page.SiteName = meta("property", "og:site_name")
	if img := meta("property", "og:image"); img != "" {
		page.OGImage = resolve(base, img)
	}

	doc.Find("link[rel]").Each(func(_ int, s *goquery.Selection) {
		rel := strings.ToLower(s.AttrOr("rel", ""))
		href := s.AttrOr("href", "")
		if href == "" {
			return
		}
		switch rel {
		case "icon", "shortcut icon", "apple-touch-icon", "apple-touch-icon-precomposed":
			page.Icons = append(page.Icons, resolve(base, href))
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		u, err := url.Parse(href)
		if err != nil || u.Host == "" {
			return
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		switch {
		case (host == "twitter.com" || host == "x.com") && page.Social.Twitter == "":
			page.Social.Twitter = href
		case host == "linkedin.com" && page.Social.LinkedIn == "":
			page.Social.LinkedIn = href
		case host == "facebook.com" && page.Social.Facebook == "":
			page.Social.Facebook = href
		case host == "instagram.com" && page.Social.Instagram == "":
			page.Social.Instagram = href
		}
	})

	doc.Find("section, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(s.Text())
		if !(strings.Contains(text, "product") || strings.Contains(text, "solution")) || strings.Contains(text, "privacy") {
			return true
		}
		heads := s.Find("h2, h3")
		if heads.Length() < 2 {
			return true
		}
		heads.EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if t := strings.Join(strings.Fields(h.Text()), " "); t != "" && len(t) <= 80 {
				page.Headings = append(page.Headings, t)
			}
			return len(page.Headings) < 5
		})
		return false
	})

	return page, nil
}

func (c *httpClient) ServesImage(ctx context.Context, rawURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, eris.Wrap(err, "website: create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, eris.Wrap(err, "website: check image")
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	ct := resp.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "image/"), nil
}

// Normalize adds a scheme to bare domains and rejects anything that is not
// an http(s) URL.
func Normalize(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", eris.New("website: empty url")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrap(err, "website: parse url")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", eris.Errorf("website: unsupported url %q", rawURL)
	}
	return u.String(), nil
}

// Domain returns the host of rawURL without a leading "www.".
func Domain(rawURL string) string {
	n, err := Normalize(rawURL)
	if err != nil {
		return ""
	}
	u, _ := url.Parse(n)
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func resolve(base *url.URL, ref string) string {
	if strings.HasPrefix(ref, "//") {
		return base.Scheme + ":" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
