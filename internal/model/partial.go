package model

// Units tells the field merger how a provider expressed magnitudes.
type Units int

const (
	// UnitsAbsolute means money is in dollars and counts are raw counts.
	UnitsAbsolute Units = iota
	// UnitsScaled means money is in billions and user counts in millions.
	UnitsScaled
	// UnitsInferred means the provider may use either convention and the
	// scale is guessed from magnitude.
	UnitsInferred
)

func (u Units) String() string {
	switch u {
	case UnitsAbsolute:
		return "absolute"
	case UnitsScaled:
		return "scaled"
	case UnitsInferred:
		return "inferred"
	default:
		return "unknown"
	}
}

// PartialRecord is what a single provider returns for one lookup. Any
// subset of fields may be set; it is never persisted.
type PartialRecord struct {
	Units Units `json:"-"`

	OfficialName string       `json:"officialName,omitempty"`
	Description  string       `json:"description,omitempty"`
	Industry     string       `json:"industry,omitempty"`
	Founded      *int         `json:"founded,omitempty"`
	Headquarters string       `json:"headquarters,omitempty"`
	Website      string       `json:"website,omitempty"`
	Logo         string       `json:"logo,omitempty"`
	Size         string       `json:"size,omitempty"`
	SocialMedia  *SocialMedia `json:"socialMedia,omitempty"`

	Strengths   []string  `json:"strengths,omitempty"`
	Weaknesses  []string  `json:"weaknesses,omitempty"`
	Competitors []string  `json:"competitors,omitempty"`
	Products    []Product `json:"products,omitempty"`

	Financials      Financials      `json:"financials"`
	CustomerMetrics CustomerMetrics `json:"customerMetrics"`
}

// IsEmpty reports whether the partial carries no usable field.
func (p *PartialRecord) IsEmpty() bool {
	if p == nil {
		return true
	}
	if p.OfficialName != "" || p.Description != "" || p.Industry != "" || p.Founded != nil ||
		p.Headquarters != "" || p.Website != "" || p.Logo != "" || p.Size != "" || !p.SocialMedia.IsEmpty() {
		return false
	}
	if len(p.Strengths) > 0 || len(p.Weaknesses) > 0 || len(p.Competitors) > 0 || len(p.Products) > 0 {
		return false
	}
	if p.Financials.StockSymbol != nil || len(p.Financials.PriceHistory) > 0 {
		return false
	}
	for _, v := range p.Financials.Values() {
		if v != nil {
			return false
		}
	}
	for _, name := range CustomerFieldNames {
		if *p.CustomerMetrics.Field(name) != nil {
			return false
		}
	}
	return true
}
