// Package compare scores two company records metric by metric and projects
// the result into chart data and a verdict.
package compare

import "github.com/richmondnkrumah/Data-Scraper/internal/model"

// Kind says how a metric is scaled for display.
type Kind int

const (
	// KindPlain values are shown as they are.
	KindPlain Kind = iota
	// KindMoney values are dollars shown in billions.
	KindMoney
	// KindCount values are counts shown in millions.
	KindCount
	// KindPercent values are fractions shown as percentages.
	KindPercent
)

// Unit is the display suffix for k.
func (k Kind) Unit() string {
	switch k {
	case KindMoney:
		return "B"
	case KindCount:
		return "M"
	case KindPercent:
		return "%"
	default:
		return ""
	}
}

// Scale converts a stored value into its display magnitude.
func (k Kind) Scale(v float64) float64 {
	switch k {
	case KindMoney:
		return v / 1e9
	case KindCount:
		return v / 1e6
	case KindPercent:
		return v * 100
	default:
		return v
	}
}

// Verdict areas.
const (
	AreaMarketCap    = "Market Capitalization"
	AreaRevenue      = "Revenue"
	AreaProfit       = "Profitability"
	AreaValuation    = "Valuation"
	AreaHealth       = "Financial Health"
	AreaGrowth       = "Growth"
	AreaSatisfaction = "Customer Satisfaction"
	AreaUserBase     = "User Base"
	AreaVariety      = "Product Variety"
	AreaQuality      = "Product Quality"
	AreaStock        = "Stock Performance"
)

// Metric describes one comparable figure.
type Metric struct {
	Key   string
	Label string
	// Phrase names the metric inside a highlight sentence.
	Phrase      string
	Area        string
	Kind        Kind
	LowerBetter bool
	// SignMatters marks profitability-style metrics where a positive
	// value beats a negative one outright.
	SignMatters bool
}

// FinancialMetrics is the compared financial set in display order.
var FinancialMetrics = []Metric{
	{Key: "marketCap", Label: "Market Cap", Phrase: "market capitalization", Area: AreaMarketCap, Kind: KindMoney},
	{Key: "revenue", Label: "Revenue", Phrase: "revenue", Area: AreaRevenue, Kind: KindMoney},
	{Key: "profitMargin", Label: "Profit Margin", Phrase: "profit margin", Area: AreaProfit, Kind: KindPercent, SignMatters: true},
	{Key: "peRatio", Label: "P/E Ratio", Phrase: "P/E ratio", Area: AreaValuation, LowerBetter: true},
	{Key: "eps", Label: "EPS", Phrase: "earnings per share", Area: AreaProfit, SignMatters: true},
	{Key: "currentRatio", Label: "Current Ratio", Phrase: "current ratio", Area: AreaHealth},
	{Key: "debtToEquity", Label: "Debt to Equity", Phrase: "debt to equity", Area: AreaHealth, LowerBetter: true},
	{Key: "beta", Label: "Beta", Phrase: "beta", Area: AreaStock},
	{Key: "returnOnEquity", Label: "Return on Equity", Phrase: "return on equity", Area: AreaProfit, Kind: KindPercent, SignMatters: true},
	{Key: "returnOnAssets", Label: "Return on Assets", Phrase: "return on assets", Area: AreaProfit, Kind: KindPercent, SignMatters: true},
	{Key: "grossMargin", Label: "Gross Margin", Phrase: "gross margin", Area: AreaProfit, Kind: KindPercent, SignMatters: true},
	{Key: "operatingMargin", Label: "Operating Margin", Phrase: "operating margin", Area: AreaProfit, Kind: KindPercent, SignMatters: true},
	{Key: "revenueGrowth", Label: "Revenue Growth", Phrase: "revenue growth", Area: AreaGrowth, Kind: KindPercent, SignMatters: true},
	{Key: "earningsGrowth", Label: "Earnings Growth", Phrase: "earnings growth", Area: AreaGrowth, Kind: KindPercent, SignMatters: true},
	{Key: "priceToBook", Label: "Price to Book", Phrase: "price to book", Area: AreaValuation},
	{Key: "pegRatio", Label: "PEG Ratio", Phrase: "PEG ratio", Area: AreaValuation, LowerBetter: true},
	{Key: "quickRatio", Label: "Quick Ratio", Phrase: "quick ratio", Area: AreaHealth},
	{Key: "forwardPe", Label: "Forward P/E", Phrase: "forward P/E", Area: AreaValuation, LowerBetter: true},
	{Key: "trailingPe", Label: "Trailing P/E", Phrase: "trailing P/E", Area: AreaValuation, LowerBetter: true},
	{Key: "shortRatio", Label: "Short Ratio", Phrase: "short ratio", Area: AreaStock, LowerBetter: true},
	{Key: "totalCash", Label: "Total Cash", Phrase: "cash reserves", Area: AreaHealth, Kind: KindMoney},
	{Key: "enterpriseValue", Label: "Enterprise Value", Phrase: "enterprise value", Area: AreaValuation, Kind: KindMoney},
	{Key: "bookValue", Label: "Book Value", Phrase: "book value", Area: AreaValuation},
	{Key: "stockPrice", Label: "Stock Price", Phrase: "stock price", Area: AreaStock},
	{Key: "stockPerformance", Label: "Stock Performance", Phrase: "stock performance", Area: AreaStock, Kind: KindPercent, SignMatters: true},
}

// CustomerMetrics is the compared customer set in display order.
var CustomerMetrics = []Metric{
	{Key: "userCount", Label: "User Count", Phrase: "user base", Area: AreaUserBase, Kind: KindCount},
	{Key: "userGrowth", Label: "User Growth", Phrase: "user growth", Area: AreaGrowth, Kind: KindPercent, SignMatters: true},
	{Key: "churnRate", Label: "Churn Rate", Phrase: "churn rate", Area: AreaSatisfaction, Kind: KindPercent, LowerBetter: true},
	{Key: "nps", Label: "Net Promoter Score", Phrase: "net promoter score", Area: AreaSatisfaction},
	{Key: "rating", Label: "Rating", Phrase: "customer rating", Area: AreaSatisfaction},
}

// ProductMetrics is the product comparison set.
var ProductMetrics = []Metric{
	{Key: "variety", Label: "Product Count", Phrase: "product variety", Area: AreaVariety},
	{Key: "quality", Label: "Average Product Rating", Phrase: "product ratings", Area: AreaQuality},
}

var metricsByKey = func() map[string]Metric {
	m := make(map[string]Metric)
	for _, set := range [][]Metric{FinancialMetrics, CustomerMetrics, ProductMetrics} {
		for _, mt := range set {
			m[mt.Key] = mt
		}
	}
	return m
}()

// Lookup returns the metric named key.
func Lookup(key string) (Metric, bool) {
	m, ok := metricsByKey[key]
	return m, ok
}

func financialValue(rec *model.CompanyRecord, key string) *float64 {
	if p := rec.Financials.Field(key); p != nil {
		return *p
	}
	return nil
}

func customerValue(rec *model.CompanyRecord, key string) *float64 {
	if p := rec.CustomerMetrics.Field(key); p != nil {
		return *p
	}
	return nil
}
