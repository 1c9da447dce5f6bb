package model

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// companyNamespace seeds deterministic company ids.
var companyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://data-scraper/company"))

// NormalizeKey maps a company name to its cache key: accents stripped,
// case folded, whitespace collapsed.
func NormalizeKey(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}

// Slug keeps only ASCII letters, digits and underscores of the lowercased name.
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(NormalizeKey(name)) {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CompanyID derives a stable id from a normalized key.
func CompanyID(key string) string {
	return uuid.NewSHA1(companyNamespace, []byte(key)).String()
}

// ComparisonID is the display id of the ordered pair of companies. Slugs
// drop punctuation and non-Latin letters, so distinct pairs can share one.
func ComparisonID(name1, name2 string) string {
	return Slug(name1) + "-" + Slug(name2)
}

// ComparisonKey is the cache key of the ordered pair of normalized keys.
// Distinct keys always give distinct cache keys.
func ComparisonKey(key1, key2 string) string {
	return CompanyID(key1) + ":" + CompanyID(key2)
}

// NewCompanyRecord returns an empty record with identity fields set.
func NewCompanyRecord(name string) *CompanyRecord {
	key := NormalizeKey(name)
	return &CompanyRecord{
		ID:            CompanyID(key),
		Name:          strings.TrimSpace(name),
		NormalizedKey: key,
		Slug:          Slug(name),
	}
}
