package resolver

import (
	"sort"
	"strings"
	"time"

	"github.com/richmondnkrumah/Data-Scraper/internal/company"
	"github.com/richmondnkrumah/Data-Scraper/internal/estimate"
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// sourceDerived labels fields computed from other fields when the input's
// own provenance is unknown.
const sourceDerived = "derived"

// descriptiveFields count toward a record's primary data source.
var descriptiveFields = map[string]bool{
	"description":  true,
	"industry":     true,
	"headquarters": true,
	"website":      true,
	"founded":      true,
}

// Finalize completes a freshly resolved record: derived metrics, estimated
// customer metrics, the primary data source and the timestamp. It reports
// whether the record holds any financial or descriptive data.
func Finalize(rec *model.CompanyRecord, now time.Time) bool {
	derivePerformance(rec)
	estimate.Backfill(rec)

	usable := rec.HasFinancials() || rec.HasDescriptive()
	if usable {
		rec.DataSource = primarySource(rec)
	} else {
		rec.DataSource = model.SourceNoData
	}

	ts := now.UTC()
	rec.LastUpdated = &ts
	return usable
}

// StockPerformance is the relative change from the oldest to the newest
// close in history, or nil with fewer than two usable points.
func StockPerformance(history []model.PricePoint) *float64 {
	if len(history) < 2 {
		return nil
	}
	pts := append([]model.PricePoint(nil), history...)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })

	oldest, newest := pts[0].Price, pts[len(pts)-1].Price
	if oldest <= 0 {
		return nil
	}
	v := (newest - oldest) / oldest
	return &v
}

func derivePerformance(rec *model.CompanyRecord) {
	perf := StockPerformance(rec.Financials.PriceHistory)
	if perf == nil {
		return
	}
	source := sourceDerived
	if e, ok := rec.Provenance("financials.priceHistory"); ok {
		source = e.Source
	}
	company.Merge(rec, &model.PartialRecord{Financials: model.Financials{StockPerformance: perf}}, source)
}

// primarySource is the provider of the first core field written.
func primarySource(rec *model.CompanyRecord) string {
	for _, e := range rec.DataSourceDetails {
		if e.Source == model.SourceEstimate {
			continue
		}
		if descriptiveFields[e.Field] {
			return e.Source
		}
		if strings.HasPrefix(e.Field, "financials.") && e.Field != "financials.stockSymbol" {
			return e.Source
		}
	}
	return model.SourceNoData
}
