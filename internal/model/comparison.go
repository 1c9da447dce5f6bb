package model

import "time"

// TieRule names the rule that decided a metric.
type TieRule string

const (
	RuleDirect          TieRule = "direct"
	RuleOneMissing      TieRule = "one-missing"
	RuleSignMismatch    TieRule = "sign-mismatch"
	RuleTieMarketCap    TieRule = "tie-market-cap"
	RuleTieAlphabetical TieRule = "tie-alphabetical"
)

// TieLabel is the overall winner when win counts are equal.
const TieLabel = "Tie"

// MetricComparison is the outcome of comparing one metric. Better holds a
// company id.
type MetricComparison struct {
	Better            string   `json:"better"`
	DifferencePercent float64  `json:"differencePercent"`
	Value1            *float64 `json:"value1"`
	Value2            *float64 `json:"value2"`
	Rule              TieRule  `json:"rule"`
}

// Highlight is one strength or weakness line of a verdict.
type Highlight struct {
	Company     string  `json:"company"`
	CompanyName string  `json:"companyName"`
	Metric      string  `json:"metric"`
	Area        string  `json:"area"`
	Description string  `json:"description"`
	Magnitude   float64 `json:"magnitude"`
}

// Verdict is the tally over every compared metric.
type Verdict struct {
	Winner     string         `json:"winner"`
	WinnerName string         `json:"winnerName"`
	Wins       map[string]int `json:"wins"`
	Strengths  []Highlight    `json:"strengths"`
	Weaknesses []Highlight    `json:"weaknesses"`
}

// Dataset is one company's series in a chart. A nil point is a gap.
type Dataset struct {
	Company string     `json:"company"`
	Data    []*float64 `json:"data"`
}

// Chart is a label/value projection ready for rendering.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// DetailedMetric is one row of the per-metric chart listing.
type DetailedMetric struct {
	Metric     string    `json:"metric"`
	Label      string    `json:"label"`
	Unit       string    `json:"unit"`
	Percentage bool      `json:"percentage"`
	Values     []float64 `json:"values"`
	Better     string    `json:"better"`
}

// ChartData groups every chart projection of a comparison.
type ChartData struct {
	Finances       Chart            `json:"finances"`
	UserMetrics    Chart            `json:"userMetrics"`
	ProductRatings Chart            `json:"productRatings"`
	Detailed       []DetailedMetric `json:"detailed"`
}

// ComparisonResult is the derived comparison of two companies.
type ComparisonResult struct {
	ID                    string                      `json:"id"`
	Companies             [2]string                   `json:"companies"`
	CompanyNames          [2]string                   `json:"companyNames"`
	FinancialComparison   map[string]MetricComparison `json:"financialComparison"`
	UserMetricsComparison map[string]MetricComparison `json:"userMetricsComparison"`
	ProductComparison     map[string]MetricComparison `json:"productComparison"`
	ChartData             ChartData                   `json:"chartData"`
	OverallWinner         string                      `json:"overallWinner"`
	Verdict               Verdict                     `json:"verdict"`
	Strengths             []Highlight                 `json:"strengths"`
	Weaknesses            []Highlight                 `json:"weaknesses"`
	LastUpdated           *time.Time                  `json:"lastUpdated"`
}
