package compare

import (
	"fmt"
	"strings"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// ChartType names one chart projection.
type ChartType string

const (
	ChartFinances       ChartType = "finances"
	ChartUserMetrics    ChartType = "userMetrics"
	ChartProductRatings ChartType = "productRatings"
	ChartDetailed       ChartType = "detailed"
)

// maxChartProducts caps the rated products charted per company.
const maxChartProducts = 5

var chartAliases = map[string]ChartType{
	"financial":      ChartFinances,
	"financials":     ChartFinances,
	"finance":        ChartFinances,
	"finances":       ChartFinances,
	"user":           ChartUserMetrics,
	"users":          ChartUserMetrics,
	"usermetrics":    ChartUserMetrics,
	"customer":       ChartUserMetrics,
	"customers":      ChartUserMetrics,
	"product":        ChartProductRatings,
	"products":       ChartProductRatings,
	"productratings": ChartProductRatings,
	"detailed":       ChartDetailed,
	"all":            ChartDetailed,
}

// UnknownChartError is returned for a chart type with no projection.
type UnknownChartError struct {
	Type string
}

func (e *UnknownChartError) Error() string {
	return fmt.Sprintf("Unknown chart type: %s", e.Type)
}

// ParseChartType resolves s, case-insensitively, to a chart type.
func ParseChartType(s string) (ChartType, error) {
	if t, ok := chartAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", &UnknownChartError{Type: s}
}

// Select returns the projection of data for t.
func Select(data model.ChartData, t ChartType) any {
	switch t {
	case ChartFinances:
		return data.Finances
	case ChartUserMetrics:
		return data.UserMetrics
	case ChartProductRatings:
		return data.ProductRatings
	default:
		return data.Detailed
	}
}

type chartColumn struct {
	label string
	value func(*model.CompanyRecord) *float64
	kind  Kind
}

var financeColumns = []chartColumn{
	{"Market Cap (B)", func(r *model.CompanyRecord) *float64 { return r.Financials.MarketCap }, KindMoney},
	{"Revenue (B)", func(r *model.CompanyRecord) *float64 { return r.Financials.Revenue }, KindMoney},
	{"Profit Margin (%)", func(r *model.CompanyRecord) *float64 { return r.Financials.ProfitMargin }, KindPercent},
	{"P/E Ratio", func(r *model.CompanyRecord) *float64 { return r.Financials.PERatio }, KindPlain},
	{"EPS", func(r *model.CompanyRecord) *float64 { return r.Financials.EPS }, KindPlain},
}

var userColumns = []chartColumn{
	{"User Count (M)", func(r *model.CompanyRecord) *float64 { return r.CustomerMetrics.UserCount }, KindCount},
	{"User Growth (%)", func(r *model.CompanyRecord) *float64 { return r.CustomerMetrics.UserGrowth }, KindPercent},
	{"Rating", func(r *model.CompanyRecord) *float64 { return r.CustomerMetrics.Rating }, KindPlain},
}

// Charts projects both records into every chart. Missing values chart as
// zero; the comparison itself keeps them nil.
func Charts(a, b *model.CompanyRecord, res *model.ComparisonResult) model.ChartData {
	return model.ChartData{
		Finances:       columnChart(financeColumns, a, b),
		UserMetrics:    columnChart(userColumns, a, b),
		ProductRatings: productChart(a, b),
		Detailed:       detailed(res),
	}
}

func columnChart(cols []chartColumn, recs ...*model.CompanyRecord) model.Chart {
	c := model.Chart{Labels: make([]string, 0, len(cols))}
	for _, col := range cols {
		c.Labels = append(c.Labels, col.label)
	}
	for _, r := range recs {
		ds := model.Dataset{Company: r.Name, Data: make([]*float64, 0, len(cols))}
		for _, col := range cols {
			ds.Data = append(ds.Data, model.Float(display(col.kind, col.value(r))))
		}
		c.Datasets = append(c.Datasets, ds)
	}
	return c
}

func display(k Kind, v *float64) float64 {
	if v == nil {
		return 0
	}
	return Round(k.Scale(*v), 2)
}

// productChart lists up to five rated products per company. Each dataset
// has a gap under the other company's products.
func productChart(a, b *model.CompanyRecord) model.Chart {
	pa, pb := ratedProducts(a.Products), ratedProducts(b.Products)
	c := model.Chart{Labels: []string{}, Datasets: []model.Dataset{}}
	if len(pa) == 0 && len(pb) == 0 {
		return c
	}

	for _, p := range pa {
		c.Labels = append(c.Labels, a.Name+": "+p.Name)
	}
	for _, p := range pb {
		c.Labels = append(c.Labels, b.Name+": "+p.Name)
	}

	da := model.Dataset{Company: a.Name, Data: make([]*float64, len(pa)+len(pb))}
	db := model.Dataset{Company: b.Name, Data: make([]*float64, len(pa)+len(pb))}
	for i, p := range pa {
		da.Data[i] = copyFloat(p.Rating)
	}
	for i, p := range pb {
		db.Data[len(pa)+i] = copyFloat(p.Rating)
	}
	c.Datasets = append(c.Datasets, da, db)
	return c
}

func ratedProducts(ps []model.Product) []model.Product {
	var out []model.Product
	for _, p := range ps {
		if p.Rating == nil {
			continue
		}
		out = append(out, p)
		if len(out) == maxChartProducts {
			break
		}
	}
	return out
}

// detailed lists every compared metric with data in display order.
func detailed(res *model.ComparisonResult) []model.DetailedMetric {
	out := []model.DetailedMetric{}
	add := func(set []Metric, cmp map[string]model.MetricComparison) {
		for _, m := range set {
			mc, ok := cmp[m.Key]
			if !ok {
				continue
			}
			out = append(out, model.DetailedMetric{
				Metric:     m.Key,
				Label:      m.Label,
				Unit:       m.Kind.Unit(),
				Percentage: m.Kind == KindPercent,
				Values:     []float64{display(m.Kind, mc.Value1), display(m.Kind, mc.Value2)},
				Better:     mc.Better,
			})
		}
	}
	add(FinancialMetrics, res.FinancialComparison)
	add(CustomerMetrics, res.UserMetricsComparison)
	return out
}
