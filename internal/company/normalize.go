package company

import (
	"math"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// InferThreshold is the magnitude below which an inferred-unit value is
// read as billions (money) or millions (user counts). A genuinely tiny
// absolute value under it is misread; providers that know their unit
// should declare UnitsScaled or UnitsAbsolute instead.
const InferThreshold = 10_000

const (
	billion = 1e9
	million = 1e6
)

// moneyFields are scaled by billions.
var moneyFields = []string{"marketCap", "revenue", "totalRevenue", "grossProfit", "enterpriseValue", "totalCash"}

// Normalize returns a copy of p with money expressed in dollars and user
// counts as raw counts. Absolute partials are returned unchanged.
func Normalize(p *model.PartialRecord) *model.PartialRecord {
	if p == nil || p.Units == model.UnitsAbsolute {
		return p
	}
	out := *p
	for _, name := range moneyFields {
		ptr := out.Financials.Field(name)
		*ptr = scale(*ptr, billion, p.Units)
	}
	out.CustomerMetrics.UserCount = scale(out.CustomerMetrics.UserCount, million, p.Units)
	out.Units = model.UnitsAbsolute
	return &out
}

func scale(v *float64, factor float64, units model.Units) *float64 {
	if v == nil {
		return nil
	}
	n := *v
	switch units {
	case model.UnitsScaled:
		n *= factor
	case model.UnitsInferred:
		if math.Abs(n) < InferThreshold {
			n *= factor
		}
	}
	return &n
}
