// Package company fuses provider partial records into one CompanyRecord.
package company

import (
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// Merge copies every field present in p into target when the target field
// is still empty. The first provider to supply a field keeps it. Magnitudes
// are normalized before anything is written. It returns the provenance
// entries it appended to target.DataSourceDetails.
func Merge(target *model.CompanyRecord, p *model.PartialRecord, source string) []model.ProvenanceEntry {
	if target == nil || p == nil {
		return nil
	}
	p = Normalize(p)

	m := merger{target: target, source: source}

	m.str("officialName", &target.OfficialName, p.OfficialName)
	m.str("description", &target.Description, p.Description)
	m.str("industry", &target.Industry, p.Industry)
	m.str("headquarters", &target.Headquarters, p.Headquarters)
	m.str("website", &target.Website, p.Website)
	m.str("logo", &target.Logo, p.Logo)
	m.str("size", &target.Size, p.Size)

	if target.Founded == nil && p.Founded != nil {
		v := *p.Founded
		target.Founded = &v
		m.record("founded", v)
	}
	if target.SocialMedia.IsEmpty() && !p.SocialMedia.IsEmpty() {
		sm := *p.SocialMedia
		target.SocialMedia = &sm
		m.record("socialMedia", sm)
	}

	m.list("strengths", &target.Strengths, p.Strengths)
	m.list("weaknesses", &target.Weaknesses, p.Weaknesses)
	m.list("competitors", &target.Competitors, p.Competitors)
	if len(target.Products) == 0 && len(p.Products) > 0 {
		target.Products = append([]model.Product(nil), p.Products...)
		m.record("products", len(p.Products))
	}

	if target.Financials.StockSymbol == nil && p.Financials.StockSymbol != nil && *p.Financials.StockSymbol != "" {
		sym := *p.Financials.StockSymbol
		target.Financials.StockSymbol = &sym
		m.record("financials.stockSymbol", sym)
	}
	for _, name := range model.FinancialFieldNames {
		m.num("financials."+name, target.Financials.Field(name), *p.Financials.Field(name))
	}
	if len(target.Financials.PriceHistory) == 0 && len(p.Financials.PriceHistory) > 0 {
		target.Financials.PriceHistory = append([]model.PricePoint(nil), p.Financials.PriceHistory...)
		m.record("financials.priceHistory", len(p.Financials.PriceHistory))
	}

	for _, name := range model.CustomerFieldNames {
		m.num("customerMetrics."+name, target.CustomerMetrics.Field(name), *p.CustomerMetrics.Field(name))
	}

	return m.written
}

type merger struct {
	target  *model.CompanyRecord
	source  string
	written []model.ProvenanceEntry
}

func (m *merger) record(field string, value any) {
	e := model.ProvenanceEntry{Field: field, Source: m.source, Value: value}
	m.target.DataSourceDetails = append(m.target.DataSourceDetails, e)
	m.written = append(m.written, e)
}

func (m *merger) str(field string, dst *string, v string) {
	if *dst != "" || v == "" {
		return
	}
	*dst = v
	m.record(field, v)
}

func (m *merger) list(field string, dst *[]string, v []string) {
	if len(*dst) > 0 || len(v) == 0 {
		return
	}
	*dst = append([]string(nil), v...)
	m.record(field, len(v))
}

func (m *merger) num(field string, dst **float64, v *float64) {
	if *dst != nil || v == nil {
		return
	}
	n := *v
	*dst = &n
	m.record(field, n)
}
