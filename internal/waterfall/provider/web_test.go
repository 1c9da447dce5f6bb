package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/pkg/google"
	"github.com/richmondnkrumah/Data-Scraper/pkg/google/mocks"
	"github.com/richmondnkrumah/Data-Scraper/pkg/website"
)

// fakeSite serves pages by URL and answers image checks from a set of live
// image URLs.
type fakeSite struct {
	pages  map[string]*website.Page
	images map[string]bool
	checked []string
}

func (f *fakeSite) Fetch(_ context.Context, rawURL string) (*website.Page, error) {
	if p, ok := f.pages[rawURL]; ok {
		return p, nil
	}
	return nil, eris.Errorf("fetch %s: 404", rawURL)
}

func (f *fakeSite) ServesImage(_ context.Context, rawURL string) (bool, error) {
	f.checked = append(f.checked, rawURL)
	return f.images[rawURL], nil
}

func TestArticleTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Apple Inc.", "Apple"},
		{"Microsoft Corporation", "Microsoft"},
		{"Acme Holdings, Ltd.", "Acme_Holdings"},
		{"Foo Corp, Inc", "Foo"},
		{"Bank of America", "Bank_of_America"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ArticleTitle(tt.in), tt.in)
	}
}

func TestGuessDomain(t *testing.T) {
	assert.Equal(t, "acme.com", GuessDomain("Acme Corp"))
	assert.Equal(t, "bankofamerica.com", GuessDomain("Bank of America"))
	assert.Equal(t, "", GuessDomain("  "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short ", 10))
	assert.Equal(t, "First sentence.", truncate("First sentence. Second sentence is long", 25))
	assert.Equal(t, "alpha beta...", truncate("alpha beta gamma", 12))
}

func TestWebsite_FetchMapsPage(t *testing.T) {
	site := &fakeSite{pages: map[string]*website.Page{
		"acme.com": {
			URL:      "https://acme.com/",
			Text:     "Acme builds rockets. " + strings.Repeat("More words here. ", 50),
			Icons:    []string{"https://acme.com/icon.png"},
			Social:   website.Social{Twitter: "https://twitter.com/acme"},
			Headings: []string{"Rockets", "Magnets"},
		},
	}}

	p, err := NewWebsite(site, true).Fetch(context.Background(), Query{Name: "Acme Corp"})
	require.NoError(t, err)

	assert.Equal(t, "https://acme.com/", p.Website)
	assert.True(t, strings.HasPrefix(p.Description, "Acme builds rockets."))
	assert.LessOrEqual(t, len(p.Description), maxDescriptionRunes+3)
	assert.Equal(t, "https://acme.com/icon.png", p.Logo)
	require.NotNil(t, p.SocialMedia)
	assert.Equal(t, "https://twitter.com/acme", p.SocialMedia.Twitter)
	require.Len(t, p.Products, 2)
	assert.Equal(t, "Rockets", p.Products[0].Name)
}

func TestWebsite_PrefersKnownSite(t *testing.T) {
	site := &fakeSite{pages: map[string]*website.Page{
		"https://www.acme.io": {URL: "https://www.acme.io", Description: "Meta description", OGImage: "https://www.acme.io/og.png"},
	}}
	p, err := NewWebsite(site, true).Fetch(context.Background(), Query{Name: "Acme", Website: "https://www.acme.io"})
	require.NoError(t, err)
	assert.Equal(t, "Meta description", p.Description)
	assert.Equal(t, "https://www.acme.io/og.png", p.Logo)
	assert.Nil(t, p.SocialMedia)
}

func TestAcceptableLogo(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://upload.wikimedia.org/acme_logo.svg", true},
		{"https://cdn.acme.com/brand/Logo.PNG", true},
		{"https://cdn.acme.com/brand/logo.gif", false},
		{"https://cdn.acme.com/brand/header.png", false},
		{"https://www.shutterstock.com/acme-logo.jpg", false},
		{"not a url logo.png", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AcceptableLogo(tt.link), tt.link)
	}
}

func TestLogo_ClearbitFirst(t *testing.T) {
	site := &fakeSite{images: map[string]bool{"https://logo.test/acme.com": true}}
	search := mocks.NewMockClient(t)

	p, err := NewLogo(site, search, "https://logo.test/", true).Fetch(context.Background(), Query{Name: "Acme", Website: "https://acme.com"})
	require.NoError(t, err)
	assert.Equal(t, "https://logo.test/acme.com", p.Logo)
	search.AssertNotCalled(t, "ImageSearch", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogo_FallsBackToFavicon(t *testing.T) {
	site := &fakeSite{images: map[string]bool{"https://acme.com/apple-touch-icon.png": true}}

	p, err := NewLogo(site, nil, "https://logo.test", true).Fetch(context.Background(), Query{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/apple-touch-icon.png", p.Logo)
}

func TestLogo_FallsBackToImageSearch(t *testing.T) {
	site := &fakeSite{}
	search := mocks.NewMockClient(t)
	search.On("ImageSearch", mock.Anything, "Acme logo official transparent", 0).Return(&google.SearchResponse{Items: []google.Item{
		{Link: "https://www.gettyimages.com/acme-logo.png"},
		{Link: "https://upload.wikimedia.org/acme-logo.svg"},
	}}, nil)

	p, err := NewLogo(site, search, "", true).Fetch(context.Background(), Query{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "https://upload.wikimedia.org/acme-logo.svg", p.Logo)
}

func TestLogo_NothingFound(t *testing.T) {
	search := mocks.NewMockClient(t)
	search.On("ImageSearch", mock.Anything, mock.Anything, 0).Return(&google.SearchResponse{}, nil)

	_, err := NewLogo(&fakeSite{}, search, "", true).Fetch(context.Background(), Query{Name: "Acme"})
	assert.ErrorIs(t, err, ErrNoData)
}
