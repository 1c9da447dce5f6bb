package provider

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/wikipedia"
)

// Wikipedia reads the article summary and infobox.
type Wikipedia struct {
	client  wikipedia.Client
	enabled bool
}

// NewWikipedia wraps client.
func NewWikipedia(client wikipedia.Client, enabled bool) *Wikipedia {
	return &Wikipedia{client: client, enabled: enabled && client != nil}
}

func (w *Wikipedia) Name() string  { return "wikipedia" }
func (w *Wikipedia) Enabled() bool { return w.enabled }

const maxSearchHits = 3

var legalSuffixRe = regexp.MustCompile(`(?i)[,\s]+(inc\.?|incorporated|corporation|corp\.?|ltd\.?|limited|plc|llc)$`)

// ArticleTitle strips legal suffixes and spaces the way article titles are
// written.
func ArticleTitle(name string) string {
	t := strings.TrimSpace(name)
	for {
		next := legalSuffixRe.ReplaceAllString(t, "")
		if next == t {
			break
		}
		t = strings.TrimSpace(next)
	}
	return strings.ReplaceAll(t, " ", "_")
}

func (w *Wikipedia) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	sum, err := w.summary(ctx, q.Name)
	if err != nil {
		return nil, err
	}

	p := &model.PartialRecord{
		Units:        model.UnitsAbsolute,
		OfficialName: sum.Title,
		Description:  strings.TrimSpace(sum.Extract),
	}
	if p.Description == "" {
		if ex, err := w.client.Extract(ctx, sum.Title); err == nil {
			p.Description = ex
		}
	}
	if sum.Thumbnail != nil {
		p.Logo = sum.Thumbnail.Source
	}

	ib, err := w.client.Infobox(ctx, sum.Title)
	if err != nil {
		zap.L().Debug("wikipedia: infobox unavailable", zap.String("title", sum.Title), zap.Error(err))
		return p, nil
	}
	p.Founded = ib.Founded
	p.Industry = ib.Industry
	p.Headquarters = ib.Headquarters
	p.Website = ib.Website
	p.Financials.Revenue = ib.Revenue
	if ib.Employees != "" {
		p.Size = employees(parseLooseNumber(ib.Employees))
	}
	// Infobox logos are the company's own artwork; thumbnails may be photos.
	if ib.Logo != "" {
		p.Logo = ib.Logo
	}
	return p, nil
}

// summary looks the article up by title first and falls back to search
// when the title misses or lands on a disambiguation page.
func (w *Wikipedia) summary(ctx context.Context, name string) (*wikipedia.Summary, error) {
	sum, err := w.client.Summary(ctx, ArticleTitle(name))
	switch {
	case err == nil && sum.Type != "disambiguation":
		return sum, nil
	case err != nil && !errors.Is(err, wikipedia.ErrNotFound):
		return nil, err
	}

	hits, err := w.client.Search(ctx, name+" company")
	if err != nil {
		return nil, err
	}
	for i, h := range hits {
		if i == maxSearchHits {
			break
		}
		s, err := w.client.Summary(ctx, strings.ReplaceAll(h.Title, " ", "_"))
		if err != nil || s.Type == "disambiguation" {
			continue
		}
		return s, nil
	}
	return nil, ErrNoData
}
