package compare

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// NearTie is the relative difference below which two values are equal.
const NearTie = 0.001

// epsilon keeps the relative difference of two zeros defined.
const epsilon = 1e-12

// Side identifies one company in a comparison.
type Side struct {
	ID        string
	Name      string
	MarketCap *float64
}

// SideOf builds the comparison identity of rec.
func SideOf(rec *model.CompanyRecord) Side {
	return Side{ID: rec.ID, Name: rec.Name, MarketCap: rec.Financials.MarketCap}
}

// CompareMetric decides which side has the better value of m. The outcome
// depends only on the values and sides, never on argument order: swapping
// both pairs yields the same winner and difference.
func CompareMetric(m Metric, v1, v2 *float64, a, b Side) model.MetricComparison {
	res := model.MetricComparison{Value1: copyFloat(v1), Value2: copyFloat(v2)}

	switch {
	case v1 == nil && v2 == nil:
		res.Better, res.Rule = alphabetical(a, b).ID, model.RuleTieAlphabetical
		return res
	case v2 == nil:
		res.Better, res.DifferencePercent, res.Rule = a.ID, 100, model.RuleOneMissing
		return res
	case v1 == nil:
		res.Better, res.DifferencePercent, res.Rule = b.ID, 100, model.RuleOneMissing
		return res
	}

	x, y := *v1, *v2
	if m.SignMatters && (x > 0 && y < 0 || x < 0 && y > 0) {
		res.DifferencePercent, res.Rule = 100, model.RuleSignMismatch
		if x > 0 {
			res.Better = a.ID
		} else {
			res.Better = b.ID
		}
		return res
	}

	if nearlyEqual(x, y) {
		w, rule := breakTie(m, a, b)
		res.Better, res.Rule = w.ID, rule
		return res
	}

	res.Rule = model.RuleDirect
	if (x < y) == m.LowerBetter {
		res.Better = a.ID
	} else {
		res.Better = b.ID
	}
	res.DifferencePercent = Percent(math.Abs(x-y) / math.Max(math.Abs(x), math.Abs(y)) * 100)
	return res
}

// Percent rounds p to two decimals and clamps it to [0, 100].
func Percent(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return Round(p, 2)
}

// Round rounds v half away from zero to places decimals.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func nearlyEqual(x, y float64) bool {
	scale := math.Max(math.Max(math.Abs(x), math.Abs(y)), epsilon)
	return math.Abs(x-y)/scale < NearTie
}

// breakTie prefers the clearly larger company, then the alphabetically
// first name.
func breakTie(m Metric, a, b Side) (Side, model.TieRule) {
	if m.Key != "marketCap" && a.MarketCap != nil && b.MarketCap != nil && !nearlyEqual(*a.MarketCap, *b.MarketCap) {
		if *a.MarketCap > *b.MarketCap {
			return a, model.RuleTieMarketCap
		}
		return b, model.RuleTieMarketCap
	}
	return alphabetical(a, b), model.RuleTieAlphabetical
}

func alphabetical(a, b Side) Side {
	fold := cases.Fold()
	switch c := strings.Compare(fold.String(a.Name), fold.String(b.Name)); {
	case c < 0:
		return a
	case c > 0:
		return b
	case a.ID <= b.ID:
		return a
	default:
		return b
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
