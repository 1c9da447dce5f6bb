package provider

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/website"
)

const maxDescriptionRunes = 400

// Website scrapes the company's homepage for a description, artwork,
// social links and product headings.
type Website struct {
	client  website.Client
	enabled bool
}

// NewWebsite wraps client.
func NewWebsite(client website.Client, enabled bool) *Website {
	return &Website{client: client, enabled: enabled && client != nil}
}

func (w *Website) Name() string  { return "website" }
func (w *Website) Enabled() bool { return w.enabled }

// GuessDomain is the fallback homepage for a company with no known site.
func GuessDomain(name string) string {
	slug := strings.ReplaceAll(model.Slug(ArticleTitle(name)), "_", "")
	if slug == "" {
		return ""
	}
	return slug + ".com"
}

func (w *Website) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	target := q.Website
	if target == "" {
		target = GuessDomain(q.Name)
	}
	if target == "" {
		return nil, ErrNoData
	}

	page, err := w.client.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	p := &model.PartialRecord{
		Units:       model.UnitsAbsolute,
		Website:     page.URL,
		Description: page.Description,
	}
	if p.Description == "" {
		p.Description = truncate(page.Text, maxDescriptionRunes)
	}
	switch {
	case page.OGImage != "":
		p.Logo = page.OGImage
	case len(page.Icons) > 0:
		p.Logo = page.Icons[0]
	}
	sm := model.SocialMedia(page.Social)
	if !sm.IsEmpty() {
		p.SocialMedia = &sm
	}
	for _, h := range page.Headings {
		p.Products = append(p.Products, model.Product{Name: h})
	}
	return p, nil
}

// truncate cuts s at the last sentence end or space before n runes.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := string([]rune(s)[:n])
	if i := strings.LastIndex(cut, ". "); i > n/2 {
		return cut[:i+1]
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
