package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// estimateTemperature keeps model answers close to their most likely
// figures.
const estimateTemperature = 0.2

const estimateMaxTokens = 2048

const estimatePrompt = `Provide detailed information about %s with the following structure:
1. A concise but informative company description (2-3 sentences)
2. Industry/sector the company operates in
3. Approximate financial data (use your knowledge, not real-time data):
   - Market capitalization (in billions USD)
   - Revenue (in billions USD, annual)
   - Profit margin (as decimal)
   - P/E ratio (approximate)
   - EPS (Earnings Per Share, approximate)
4. Key strengths (list 3-5 points)
5. Key challenges or weaknesses (list 2-3 points)
6. Main competitors (list up to 5)
7. Founded year
8. Headquarters location
9. Customer/user metrics (estimate):
   - Approximate user/customer count (in millions)
   - User growth rate (as decimal, e.g., 0.05 for 5%% growth)
   - Overall customer satisfaction rating (out of 5)
10. Main products (up to 5) with a one-line description, a category and a rating out of 5

Respond with JSON only, using this structure:
{
  "description": "...",
  "industry": "...",
  "website": "https://...",
  "financials": {
    "marketCap": number in billions (e.g., 200 for $200 billion),
    "revenue": number in billions (annual revenue),
    "profitMargin": decimal (e.g., 0.15 for 15%%),
    "peRatio": number,
    "eps": number
  },
  "strengths": ["...", "..."],
  "weaknesses": ["...", "..."],
  "competitors": ["...", "..."],
  "products": [{"name": "...", "description": "...", "category": "...", "rating": number}],
  "founded": "YYYY",
  "headquarters": "Location",
  "customerMetrics": {
    "userCount": number in millions,
    "userGrowth": decimal,
    "rating": number out of 5
  }
}`

// EstimatePrompt is the single prompt every AI estimator sends.
func EstimatePrompt(company string) string {
	return fmt.Sprintf(estimatePrompt, company)
}

// flexFloat accepts numbers, numeric strings ("$200", "15%", "1,200") and
// null. Anything unparseable decodes to nil.
type flexFloat struct{ v *float64 }

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] != '"' {
		var v float64
		if err := json.Unmarshal(b, &v); err == nil {
			f.v = &v
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	f.v = parseLooseNumber(s)
	return nil
}

var looseNumberRe = regexp.MustCompile(`-?\d[\d,]*\.?\d*`)

func parseLooseNumber(s string) *float64 {
	m := looseNumberRe.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return nil
	}
	if strings.Contains(s, "%") {
		v /= 100
	}
	return &v
}

// flexYear accepts "1976", 1976 or "April 1, 1976".
type flexYear struct{ v *int }

func (y *flexYear) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	y.v = year(s)
	return nil
}

type estimateProduct struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Pricing     string    `json:"pricing"`
	Rating      flexFloat `json:"rating"`
}

// estimate is the answer shape. Products come back either as objects or
// as bare names, so they are decoded separately.
type estimate struct {
	Description  string          `json:"description"`
	Industry     string          `json:"industry"`
	Website      string          `json:"website"`
	Headquarters string          `json:"headquarters"`
	Founded      flexYear        `json:"founded"`
	Strengths    []string        `json:"strengths"`
	Weaknesses   []string        `json:"weaknesses"`
	Competitors  []string        `json:"competitors"`
	Products     json.RawMessage `json:"products"`
	Financials   struct {
		MarketCap    flexFloat `json:"marketCap"`
		Revenue      flexFloat `json:"revenue"`
		ProfitMargin flexFloat `json:"profitMargin"`
		PERatio      flexFloat `json:"peRatio"`
		EPS          flexFloat `json:"eps"`
	} `json:"financials"`
	CustomerMetrics struct {
		UserCount  flexFloat `json:"userCount"`
		UserGrowth flexFloat `json:"userGrowth"`
		Rating     flexFloat `json:"rating"`
	} `json:"customerMetrics"`
}

// cleanJSON strips markdown fences and cuts the text down to the outermost
// JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

var descriptionRe = regexp.MustCompile(`"description"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// ParseEstimate turns a model answer into a partial record. When the answer
// is not valid JSON it salvages the description alone; when even that is
// missing it returns an error.
func ParseEstimate(provider, text string) (*model.PartialRecord, error) {
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return nil, eris.Wrapf(ErrNoData, "%s: empty answer", provider)
	}

	var est estimate
	if err := json.Unmarshal([]byte(cleaned), &est); err != nil {
		m := descriptionRe.FindStringSubmatch(cleaned)
		if m == nil {
			return nil, eris.Wrapf(err, "%s: malformed estimate", provider)
		}
		desc, uerr := strconv.Unquote(`"` + m[1] + `"`)
		if uerr != nil {
			desc = m[1]
		}
		return &model.PartialRecord{Units: model.UnitsInferred, Description: strings.TrimSpace(desc)}, nil
	}

	p := &model.PartialRecord{
		Units:        model.UnitsInferred,
		Description:  strings.TrimSpace(est.Description),
		Industry:     strings.TrimSpace(est.Industry),
		Website:      strings.TrimSpace(est.Website),
		Headquarters: strings.TrimSpace(est.Headquarters),
		Founded:      est.Founded.v,
		Strengths:    cleanList(est.Strengths),
		Weaknesses:   cleanList(est.Weaknesses),
		Competitors:  cleanList(est.Competitors),
		Products:     parseProducts(est.Products),
		Financials: model.Financials{
			MarketCap:    est.Financials.MarketCap.v,
			Revenue:      est.Financials.Revenue.v,
			ProfitMargin: margin(est.Financials.ProfitMargin.v),
			PERatio:      est.Financials.PERatio.v,
			EPS:          est.Financials.EPS.v,
		},
		CustomerMetrics: model.CustomerMetrics{
			UserCount:  est.CustomerMetrics.UserCount.v,
			UserGrowth: margin(est.CustomerMetrics.UserGrowth.v),
			Rating:     est.CustomerMetrics.Rating.v,
		},
	}
	return p, nil
}

// margin converts a percentage that slipped through as a whole number
// (15 for 15%) into a fraction.
func margin(v *float64) *float64 {
	if v == nil || *v <= 1 && *v >= -1 {
		return v
	}
	f := *v / 100
	return &f
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseProducts(raw json.RawMessage) []model.Product {
	if len(raw) == 0 {
		return nil
	}
	var objs []estimateProduct
	if err := json.Unmarshal(raw, &objs); err == nil {
		var out []model.Product
		for _, o := range objs {
			name := strings.TrimSpace(o.Name)
			if name == "" {
				continue
			}
			out = append(out, model.Product{
				Name:        name,
				Description: strings.TrimSpace(o.Description),
				Category:    strings.TrimSpace(o.Category),
				Pricing:     strings.TrimSpace(o.Pricing),
				Rating:      o.Rating.v,
			})
		}
		return out
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil
	}
	var out []model.Product
	for _, n := range cleanList(names) {
		out = append(out, model.Product{Name: n})
	}
	return out
}
