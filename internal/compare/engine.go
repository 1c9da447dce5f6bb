package compare

import (
	"time"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// Engine builds comparison results from two resolved records.
type Engine struct {
	now func() time.Time
}

// NewEngine returns an engine stamped with the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// WithNow sets the clock for testing.
func (e *Engine) WithNow(fn func() time.Time) *Engine {
	e.now = fn
	return e
}

// Compare scores a against b. A metric missing on both sides is left out
// of the result rather than reported as a tie.
func (e *Engine) Compare(a, b *model.CompanyRecord) *model.ComparisonResult {
	sa, sb := SideOf(a), SideOf(b)
	now := e.now().UTC()

	res := &model.ComparisonResult{
		ID:                    model.ComparisonID(a.Name, b.Name),
		Companies:             [2]string{a.ID, b.ID},
		CompanyNames:          [2]string{a.Name, b.Name},
		FinancialComparison:   compareSet(FinancialMetrics, a, b, sa, sb, financialValue),
		UserMetricsComparison: compareSet(CustomerMetrics, a, b, sa, sb, customerValue),
		ProductComparison:     compareSet(ProductMetrics, a, b, sa, sb, productValue),
		LastUpdated:           &now,
	}
	res.ChartData = Charts(a, b, res)

	v := Aggregate(res, sa, sb)
	res.Verdict = v
	res.OverallWinner = v.Winner
	res.Strengths = v.Strengths
	res.Weaknesses = v.Weaknesses
	return res
}

type valueFunc func(*model.CompanyRecord, string) *float64

func compareSet(set []Metric, a, b *model.CompanyRecord, sa, sb Side, value valueFunc) map[string]model.MetricComparison {
	out := make(map[string]model.MetricComparison, len(set))
	for _, m := range set {
		v1, v2 := value(a, m.Key), value(b, m.Key)
		if v1 == nil && v2 == nil {
			continue
		}
		out[m.Key] = CompareMetric(m, v1, v2, sa, sb)
	}
	return out
}

// productValue derives the product metrics. Variety is the product count
// and is nil only when the company lists no products; quality is the mean
// rating of rated products.
func productValue(rec *model.CompanyRecord, key string) *float64 {
	switch key {
	case "variety":
		if len(rec.Products) == 0 {
			return nil
		}
		return model.Float(float64(len(rec.Products)))
	case "quality":
		var sum float64
		var n int
		for _, p := range rec.Products {
			if p.Rating != nil {
				sum += *p.Rating
				n++
			}
		}
		if n == 0 {
			return nil
		}
		return model.Float(sum / float64(n))
	}
	return nil
}
