package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/internal/company"
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

func TestStockPerformance(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		history []model.PricePoint
		want    *float64
	}{
		{"empty", nil, nil},
		{"single point", []model.PricePoint{{Date: day(1), Price: 10}}, nil},
		{"rise", []model.PricePoint{{Date: day(1), Price: 100}, {Date: day(2), Price: 110}}, model.Float(0.1)},
		{"unsorted", []model.PricePoint{{Date: day(3), Price: 90}, {Date: day(1), Price: 100}}, model.Float(-0.1)},
		{"zero base", []model.PricePoint{{Date: day(1), Price: 0}, {Date: day(2), Price: 5}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StockPerformance(tt.history)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestFinalize_DerivesPerformanceWithHistoryProvenance(t *testing.T) {
	rec := model.NewCompanyRecord("Acme")
	company.Merge(rec, &model.PartialRecord{Financials: model.Financials{PriceHistory: []model.PricePoint{
		{Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), Price: 50},
		{Date: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC), Price: 75},
	}}}, "yahoo")

	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.True(t, Finalize(rec, now))

	require.NotNil(t, rec.Financials.StockPerformance)
	assert.InDelta(t, 0.5, *rec.Financials.StockPerformance, 1e-9)
	e, ok := rec.Provenance("financials.stockPerformance")
	require.True(t, ok)
	assert.Equal(t, "yahoo", e.Source)
	assert.Equal(t, "yahoo", rec.DataSource)
	assert.Equal(t, time.UTC, rec.LastUpdated.Location())
}

func TestFinalize_PrimarySourceSkipsSymbolAndEstimates(t *testing.T) {
	rec := model.NewCompanyRecord("Acme")
	company.Merge(rec, &model.PartialRecord{Financials: model.Financials{StockSymbol: model.String("ACME")}}, "alphavantage")
	company.Merge(rec, &model.PartialRecord{Description: "Makes things."}, "wikipedia")

	assert.True(t, Finalize(rec, time.Now()))
	assert.Equal(t, "wikipedia", rec.DataSource)
}

func TestFinalize_OnlyEstimatesIsNotUsable(t *testing.T) {
	rec := model.NewCompanyRecord("Acme")
	company.Merge(rec, &model.PartialRecord{Financials: model.Financials{StockSymbol: model.String("ACME")}}, "alphavantage")

	assert.False(t, Finalize(rec, time.Now()))
	assert.Equal(t, model.SourceNoData, rec.DataSource)
	assert.NotNil(t, rec.CustomerMetrics.NPS)
}
