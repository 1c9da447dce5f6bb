package compare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(name string, fill func(*model.CompanyRecord)) *model.CompanyRecord {
	rec := model.NewCompanyRecord(name)
	if fill != nil {
		fill(rec)
	}
	return rec
}

func testEngine() *Engine {
	return NewEngine().WithNow(func() time.Time { return fixedNow })
}

func TestEngine_Compare(t *testing.T) {
	a := record("Alpha Corp", func(r *model.CompanyRecord) {
		r.Financials.MarketCap = model.Float(3e12)
		r.Financials.Revenue = model.Float(4e11)
		r.CustomerMetrics.Rating = model.Float(4.6)
	})
	b := record("Beta Inc", func(r *model.CompanyRecord) {
		r.Financials.MarketCap = model.Float(2e12)
		r.Financials.PERatio = model.Float(25)
		r.Financials.Revenue = model.Float(4e11)
	})

	res := testEngine().Compare(a, b)

	assert.Equal(t, "alphacorp-betainc", res.ID)
	assert.Equal(t, [2]string{a.ID, b.ID}, res.Companies)
	assert.Equal(t, [2]string{"Alpha Corp", "Beta Inc"}, res.CompanyNames)
	require.NotNil(t, res.LastUpdated)
	assert.Equal(t, fixedNow, *res.LastUpdated)

	mc := res.FinancialComparison["marketCap"]
	assert.Equal(t, a.ID, mc.Better)
	assert.Equal(t, 33.33, mc.DifferencePercent)

	pe := res.FinancialComparison["peRatio"]
	assert.Equal(t, b.ID, pe.Better)
	assert.Equal(t, 100.0, pe.DifferencePercent)
	assert.Nil(t, pe.Value1)

	// Equal revenue is broken by the larger market cap.
	rev := res.FinancialComparison["revenue"]
	assert.Equal(t, a.ID, rev.Better)
	assert.Equal(t, model.RuleTieMarketCap, rev.Rule)

	// Metrics with no data on either side are left out.
	assert.Len(t, res.FinancialComparison, 3)
	assert.NotContains(t, res.FinancialComparison, "eps")
	assert.Len(t, res.UserMetricsComparison, 1)
	assert.Empty(t, res.ProductComparison)

	assert.Equal(t, a.ID, res.OverallWinner)
	assert.Equal(t, map[string]int{a.ID: 3, b.ID: 1}, res.Verdict.Wins)
}

func TestEngine_ProductComparison(t *testing.T) {
	a := record("Alpha", func(r *model.CompanyRecord) {
		r.Products = []model.Product{{Name: "One", Rating: model.Float(4)}, {Name: "Two", Rating: model.Float(5)}, {Name: "Three"}}
	})
	b := record("Beta", func(r *model.CompanyRecord) {
		r.Products = []model.Product{{Name: "Solo", Rating: model.Float(3)}}
	})

	res := testEngine().Compare(a, b)

	variety := res.ProductComparison["variety"]
	assert.Equal(t, a.ID, variety.Better)
	assert.Equal(t, 3.0, *variety.Value1)
	assert.Equal(t, 66.67, variety.DifferencePercent)

	quality := res.ProductComparison["quality"]
	assert.Equal(t, a.ID, quality.Better)
	assert.Equal(t, 4.5, *quality.Value1)
	assert.Equal(t, 3.0, *quality.Value2)
}

func TestEngine_Deterministic(t *testing.T) {
	a := record("Alpha", func(r *model.CompanyRecord) {
		r.Financials.Revenue = model.Float(100)
		r.Financials.EPS = model.Float(-1)
	})
	b := record("Beta", func(r *model.CompanyRecord) {
		r.Financials.Revenue = model.Float(100.05)
		r.Financials.EPS = model.Float(2)
	})

	first := testEngine().Compare(a, b)
	for range 20 {
		assert.Equal(t, first, testEngine().Compare(a, b))
	}

	swapped := testEngine().Compare(b, a)
	for key, mc := range first.FinancialComparison {
		assert.Equal(t, mc.Better, swapped.FinancialComparison[key].Better, key)
	}
	assert.Equal(t, "beta-alpha", swapped.ID)
}

func TestEngine_EmptyRecords(t *testing.T) {
	res := testEngine().Compare(record("Alpha", nil), record("Beta", nil))

	assert.Empty(t, res.FinancialComparison)
	assert.Empty(t, res.UserMetricsComparison)
	assert.Equal(t, model.TieLabel, res.OverallWinner)
	assert.Empty(t, res.Strengths)
	assert.Empty(t, res.Weaknesses)
	assert.Empty(t, res.ChartData.Detailed)
	assert.Empty(t, res.ChartData.ProductRatings.Datasets)
}

func TestAggregate_Highlights(t *testing.T) {
	a := record("Alpha", func(r *model.CompanyRecord) {
		r.Financials.MarketCap = model.Float(3e12)
		r.Financials.PERatio = model.Float(20)
		r.Financials.ProfitMargin = model.Float(-0.02)
		r.CustomerMetrics.Rating = model.Float(4.2)
	})
	b := record("Beta", func(r *model.CompanyRecord) {
		r.Financials.MarketCap = model.Float(2e12)
		r.Financials.PERatio = model.Float(40)
		r.Financials.ProfitMargin = model.Float(0.1)
		r.Financials.EPS = model.Float(3)
	})

	res := testEngine().Compare(a, b)
	v := res.Verdict

	assert.Equal(t, a.ID, v.Winner)
	assert.Equal(t, "Alpha", v.WinnerName)
	assert.Equal(t, map[string]int{a.ID: 3, b.ID: 2}, v.Wins)
	require.Len(t, v.Strengths, 5)
	require.Len(t, v.Weaknesses, 5)

	assert.Equal(t, model.Highlight{
		Company:     a.ID,
		CompanyName: "Alpha",
		Metric:      "marketCap",
		Area:        AreaMarketCap,
		Description: "Higher market capitalization by 33.3%",
		Magnitude:   33.33,
	}, v.Strengths[0])
	assert.Equal(t, "Lower market capitalization by 33.3%", v.Weaknesses[0].Description)
	assert.Equal(t, b.ID, v.Weaknesses[0].Company)

	assert.Equal(t, "Positive profit margin", v.Strengths[1].Description)
	assert.Equal(t, b.ID, v.Strengths[1].Company)
	assert.Equal(t, "Lower P/E ratio by 50%", v.Strengths[2].Description)
	assert.Equal(t, "Higher P/E ratio by 50%", v.Weaknesses[2].Description)
	assert.Equal(t, "Reported earnings per share", v.Strengths[3].Description)
	assert.Equal(t, "No earnings per share data", v.Weaknesses[3].Description)
	assert.Equal(t, AreaSatisfaction, v.Strengths[4].Area)

	assert.Equal(t, res.Strengths, v.Strengths)
}

func TestAggregate_EqualWinsIsTie(t *testing.T) {
	a := record("Alpha", func(r *model.CompanyRecord) { r.Financials.Revenue = model.Float(10) })
	b := record("Beta", func(r *model.CompanyRecord) { r.Financials.EPS = model.Float(1) })

	res := testEngine().Compare(a, b)
	assert.Equal(t, model.TieLabel, res.OverallWinner)
	assert.Equal(t, model.TieLabel, res.Verdict.WinnerName)
}

func TestAggregate_TiesCountButAreNotHighlighted(t *testing.T) {
	a := record("Alpha", func(r *model.CompanyRecord) { r.Financials.Revenue = model.Float(10) })
	b := record("Beta", func(r *model.CompanyRecord) { r.Financials.Revenue = model.Float(10) })

	res := testEngine().Compare(a, b)
	assert.Equal(t, a.ID, res.OverallWinner)
	assert.Empty(t, res.Strengths)
}

func TestAggregate_SameCompanyIsTie(t *testing.T) {
	a := record("Apple", func(r *model.CompanyRecord) {
		r.Financials.MarketCap = model.Float(3e12)
		r.Financials.Revenue = model.Float(3.9e11)
	})
	b := record("apple", func(r *model.CompanyRecord) {
		r.Financials.MarketCap = model.Float(3e12)
		r.Financials.Revenue = model.Float(3.9e11)
	})
	require.Equal(t, a.ID, b.ID)

	res := testEngine().Compare(a, b)
	assert.Equal(t, model.TieLabel, res.OverallWinner)
	assert.Empty(t, res.Strengths)
	assert.Empty(t, res.Weaknesses)
	assert.Equal(t, 0, res.Verdict.Wins[a.ID])
}
