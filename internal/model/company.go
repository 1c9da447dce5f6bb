// Package model defines the data types shared by the resolver, the stores
// and the comparison engine.
package model

import "time"

// CompanyRecord is the canonical fused view of one company.
//
// Numeric fields are pointers: nil means the value is unknown, which is
// distinct from zero. Descriptive strings use "" for absent.
type CompanyRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NormalizedKey string `json:"normalizedKey"`
	Slug          string `json:"slug"`

	OfficialName string       `json:"officialName"`
	Description  string       `json:"description"`
	Industry     string       `json:"industry"`
	Founded      *int         `json:"founded"`
	Headquarters string       `json:"headquarters"`
	Website      string       `json:"website"`
	Logo         string       `json:"logo"`
	Size         string       `json:"size"`
	SocialMedia  *SocialMedia `json:"socialMedia"`

	Strengths   []string  `json:"strengths"`
	Weaknesses  []string  `json:"weaknesses"`
	Competitors []string  `json:"competitors"`
	Products    []Product `json:"products"`

	Financials      Financials      `json:"financials"`
	CustomerMetrics CustomerMetrics `json:"customerMetrics"`

	DataSource        string            `json:"dataSource"`
	DataSourceDetails []ProvenanceEntry `json:"dataSourceDetails"`
	LastUpdated       *time.Time        `json:"lastUpdated"`
}

// Financials holds market and accounting figures. Money is in absolute
// dollars, ratios and margins as fractions unless the metric is a multiple.
type Financials struct {
	StockSymbol      *string      `json:"stockSymbol"`
	MarketCap        *float64     `json:"marketCap"`
	Revenue          *float64     `json:"revenue"`
	TotalRevenue     *float64     `json:"totalRevenue"`
	GrossProfit      *float64     `json:"grossProfit"`
	ProfitMargin     *float64     `json:"profitMargin"`
	GrossMargin      *float64     `json:"grossMargin"`
	OperatingMargin  *float64     `json:"operatingMargin"`
	PERatio          *float64     `json:"peRatio"`
	TrailingPE       *float64     `json:"trailingPe"`
	ForwardPE        *float64     `json:"forwardPe"`
	PEGRatio         *float64     `json:"pegRatio"`
	PriceToBook      *float64     `json:"priceToBook"`
	EPS              *float64     `json:"eps"`
	TrailingEPS      *float64     `json:"trailingEps"`
	CurrentRatio     *float64     `json:"currentRatio"`
	QuickRatio       *float64     `json:"quickRatio"`
	DebtToEquity     *float64     `json:"debtToEquity"`
	ShortRatio       *float64     `json:"shortRatio"`
	ReturnOnAssets   *float64     `json:"returnOnAssets"`
	ReturnOnEquity   *float64     `json:"returnOnEquity"`
	RevenueGrowth    *float64     `json:"revenueGrowth"`
	EarningsGrowth   *float64     `json:"earningsGrowth"`
	Beta             *float64     `json:"beta"`
	BookValue        *float64     `json:"bookValue"`
	EnterpriseValue  *float64     `json:"enterpriseValue"`
	TotalCash        *float64     `json:"totalCash"`
	StockPrice       *float64     `json:"stockPrice"`
	PreviousClose    *float64     `json:"previousClose"`
	DayLow           *float64     `json:"dayLow"`
	DayHigh          *float64     `json:"dayHigh"`
	Volume           *float64     `json:"volume"`
	AverageVolume    *float64     `json:"averageVolume"`
	StockPerformance *float64     `json:"stockPerformance"`
	PriceHistory     []PricePoint `json:"priceHistory"`
}

// CustomerMetrics holds user-facing figures.
type CustomerMetrics struct {
	UserCount  *float64 `json:"userCount"`
	UserGrowth *float64 `json:"userGrowth"`
	ChurnRate  *float64 `json:"churnRate"`
	NPS        *float64 `json:"nps"`
	Rating     *float64 `json:"rating"`
}

// PricePoint is one closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Product is one product line.
type Product struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Pricing     string   `json:"pricing,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}

// SocialMedia holds profile links.
type SocialMedia struct {
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// IsEmpty reports whether no link is set.
func (s *SocialMedia) IsEmpty() bool {
	return s == nil || (s.Twitter == "" && s.LinkedIn == "" && s.Facebook == "" && s.Instagram == "")
}

// HasFinancials reports whether any financial figure is known.
func (r *CompanyRecord) HasFinancials() bool {
	f := r.Financials
	for _, v := range f.Values() {
		if v != nil {
			return true
		}
	}
	return len(f.PriceHistory) > 0
}

// HasDescriptive reports whether any descriptive field is known.
func (r *CompanyRecord) HasDescriptive() bool {
	return r.Description != "" || r.Industry != "" || r.Headquarters != "" ||
		r.Website != "" || r.Founded != nil
}

// Values returns every numeric financial field keyed by its wire name.
func (f *Financials) Values() map[string]*float64 {
	return map[string]*float64{
		"marketCap":        f.MarketCap,
		"revenue":          f.Revenue,
		"totalRevenue":     f.TotalRevenue,
		"grossProfit":      f.GrossProfit,
		"profitMargin":     f.ProfitMargin,
		"grossMargin":      f.GrossMargin,
		"operatingMargin":  f.OperatingMargin,
		"peRatio":          f.PERatio,
		"trailingPe":       f.TrailingPE,
		"forwardPe":        f.ForwardPE,
		"pegRatio":         f.PEGRatio,
		"priceToBook":      f.PriceToBook,
		"eps":              f.EPS,
		"trailingEps":      f.TrailingEPS,
		"currentRatio":     f.CurrentRatio,
		"quickRatio":       f.QuickRatio,
		"debtToEquity":     f.DebtToEquity,
		"shortRatio":       f.ShortRatio,
		"returnOnAssets":   f.ReturnOnAssets,
		"returnOnEquity":   f.ReturnOnEquity,
		"revenueGrowth":    f.RevenueGrowth,
		"earningsGrowth":   f.EarningsGrowth,
		"beta":             f.Beta,
		"bookValue":        f.BookValue,
		"enterpriseValue":  f.EnterpriseValue,
		"totalCash":        f.TotalCash,
		"stockPrice":       f.StockPrice,
		"previousClose":    f.PreviousClose,
		"dayLow":           f.DayLow,
		"dayHigh":          f.DayHigh,
		"volume":           f.Volume,
		"averageVolume":    f.AverageVolume,
		"stockPerformance": f.StockPerformance,
	}
}

// Field returns a pointer to the named financial field, or nil if the
// name is unknown.
func (f *Financials) Field(name string) **float64 {
	switch name {
	case "marketCap":
		return &f.MarketCap
	case "revenue":
		return &f.Revenue
	case "totalRevenue":
		return &f.TotalRevenue
	case "grossProfit":
		return &f.GrossProfit
	case "profitMargin":
		return &f.ProfitMargin
	case "grossMargin":
		return &f.GrossMargin
	case "operatingMargin":
		return &f.OperatingMargin
	case "peRatio":
		return &f.PERatio
	case "trailingPe":
		return &f.TrailingPE
	case "forwardPe":
		return &f.ForwardPE
	case "pegRatio":
		return &f.PEGRatio
	case "priceToBook":
		return &f.PriceToBook
	case "eps":
		return &f.EPS
	case "trailingEps":
		return &f.TrailingEPS
	case "currentRatio":
		return &f.CurrentRatio
	case "quickRatio":
		return &f.QuickRatio
	case "debtToEquity":
		return &f.DebtToEquity
	case "shortRatio":
		return &f.ShortRatio
	case "returnOnAssets":
		return &f.ReturnOnAssets
	case "returnOnEquity":
		return &f.ReturnOnEquity
	case "revenueGrowth":
		return &f.RevenueGrowth
	case "earningsGrowth":
		return &f.EarningsGrowth
	case "beta":
		return &f.Beta
	case "bookValue":
		return &f.BookValue
	case "enterpriseValue":
		return &f.EnterpriseValue
	case "totalCash":
		return &f.TotalCash
	case "stockPrice":
		return &f.StockPrice
	case "previousClose":
		return &f.PreviousClose
	case "dayLow":
		return &f.DayLow
	case "dayHigh":
		return &f.DayHigh
	case "volume":
		return &f.Volume
	case "averageVolume":
		return &f.AverageVolume
	case "stockPerformance":
		return &f.StockPerformance
	default:
		return nil
	}
}

// FinancialFieldNames lists the numeric financial fields in a fixed order.
var FinancialFieldNames = []string{
	"marketCap", "revenue", "totalRevenue", "grossProfit", "profitMargin",
	"grossMargin", "operatingMargin", "peRatio", "trailingPe", "forwardPe",
	"pegRatio", "priceToBook", "eps", "trailingEps", "currentRatio",
	"quickRatio", "debtToEquity", "shortRatio", "returnOnAssets",
	"returnOnEquity", "revenueGrowth", "earningsGrowth", "beta", "bookValue",
	"enterpriseValue", "totalCash", "stockPrice", "previousClose", "dayLow",
	"dayHigh", "volume", "averageVolume", "stockPerformance",
}

// CustomerFieldNames lists the customer metric fields in a fixed order.
var CustomerFieldNames = []string{"userCount", "userGrowth", "churnRate", "nps", "rating"}

// Field returns a pointer to the named customer metric, or nil.
func (c *CustomerMetrics) Field(name string) **float64 {
	switch name {
	case "userCount":
		return &c.UserCount
	case "userGrowth":
		return &c.UserGrowth
	case "churnRate":
		return &c.ChurnRate
	case "nps":
		return &c.NPS
	case "rating":
		return &c.Rating
	default:
		return nil
	}
}

// Float returns a pointer to v. It keeps literal-heavy call sites short.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
