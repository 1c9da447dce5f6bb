package provider

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/pkg/google"
	"github.com/richmondnkrumah/Data-Scraper/pkg/website"
)

const defaultClearbitURL = "https://logo.clearbit.com"

var faviconPaths = []string{"/favicon.ico", "/favicon.png", "/apple-touch-icon.png"}

var logoExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".webp"}

// stockImageHosts serve watermarked or generic artwork.
var stockImageHosts = []string{"getty", "shutterstock", "alamy", "depositphotos", "placeholder", "template"}

// Logo finds a logo by trying Clearbit, then the site's own icons, then
// an image search.
type Logo struct {
	site        website.Client
	search      google.Client
	clearbitURL string
	enabled     bool
}

// NewLogo builds the logo chain. search may be nil, which skips the image
// search step.
func NewLogo(site website.Client, search google.Client, clearbitURL string, enabled bool) *Logo {
	if clearbitURL == "" {
		clearbitURL = defaultClearbitURL
	}
	return &Logo{
		site:        site,
		search:      search,
		clearbitURL: strings.TrimRight(clearbitURL, "/"),
		enabled:     enabled && site != nil,
	}
}

func (l *Logo) Name() string  { return "logo" }
func (l *Logo) Enabled() bool { return l.enabled }

func (l *Logo) Fetch(ctx context.Context, q Query) (*model.PartialRecord, error) {
	domain := website.Domain(q.Website)
	if domain == "" {
		domain = GuessDomain(q.Name)
	}

	if domain != "" {
		if logo := l.clearbit(ctx, domain); logo != "" {
			return &model.PartialRecord{Logo: logo}, nil
		}
		if logo := l.favicon(ctx, domain); logo != "" {
			return &model.PartialRecord{Logo: logo}, nil
		}
	}
	if l.search != nil {
		logo, err := l.imageSearch(ctx, q.Name)
		if err != nil {
			return nil, err
		}
		if logo != "" {
			return &model.PartialRecord{Logo: logo}, nil
		}
	}
	return nil, ErrNoData
}

func (l *Logo) clearbit(ctx context.Context, domain string) string {
	u := l.clearbitURL + "/" + domain
	ok, err := l.site.ServesImage(ctx, u)
	if err != nil {
		zap.L().Debug("logo: clearbit check failed", zap.String("domain", domain), zap.Error(err))
	}
	if ok {
		return u
	}
	return ""
}

func (l *Logo) favicon(ctx context.Context, domain string) string {
	base := "https://" + domain
	for _, p := range faviconPaths {
		if ok, _ := l.site.ServesImage(ctx, base+p); ok {
			return base + p
		}
	}
	page, err := l.site.Fetch(ctx, base)
	if err != nil {
		return ""
	}
	for _, icon := range page.Icons {
		if ok, _ := l.site.ServesImage(ctx, icon); ok {
			return icon
		}
	}
	if page.OGImage != "" {
		return page.OGImage
	}
	return ""
}

func (l *Logo) imageSearch(ctx context.Context, name string) (string, error) {
	resp, err := l.search.ImageSearch(ctx, name+" logo official transparent", 0)
	if err != nil {
		return "", err
	}
	for _, item := range resp.Items {
		if AcceptableLogo(item.Link) {
			return item.Link, nil
		}
	}
	return "", nil
}

// AcceptableLogo reports whether an image search hit looks like a real logo
// file and not stock artwork.
func AcceptableLogo(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	lower := strings.ToLower(link)
	if !strings.Contains(lower, "logo") {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, bad := range stockImageHosts {
		if strings.Contains(host, bad) {
			return false
		}
	}
	path := strings.ToLower(u.Path)
	for _, ext := range logoExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
