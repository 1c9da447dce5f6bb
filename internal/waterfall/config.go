package waterfall

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// Requirement names a group of fields a tier exists to fill.
type Requirement string

const (
	// NeedDescriptive holds while description, industry or website is empty.
	NeedDescriptive Requirement = "descriptive"
	// NeedFinancials holds while market cap, revenue, profit margin or P/E
	// is unknown.
	NeedFinancials Requirement = "financials"
	// NeedLists holds while strengths, weaknesses or products are empty.
	NeedLists Requirement = "lists"
	// NeedLogo holds while the logo is empty.
	NeedLogo Requirement = "logo"
)

// Config is the ordered tier table.
type Config struct {
	Tiers []Tier `yaml:"tiers"`
}

// Tier is one priority group of adapters. Adapters run concurrently and are
// merged in the listed order. The tier runs only while one of its Needs is
// unmet; a tier with no Needs always runs.
type Tier struct {
	Name     string        `yaml:"name"`
	Adapters []string      `yaml:"adapters"`
	Needs    []Requirement `yaml:"needs"`
}

// DefaultConfig is the built-in tier table: authoritative market data
// first, scrapers next, model estimates after that and descriptive
// sources last.
func DefaultConfig() *Config {
	return &Config{Tiers: []Tier{
		{
			Name:     "financial-apis",
			Adapters: []string{"alphavantage", "finnhub", "yahoo"},
			Needs:    []Requirement{NeedFinancials},
		},
		{
			Name:     "aggregators",
			Adapters: []string{"companiesmarketcap"},
			Needs:    []Requirement{NeedFinancials},
		},
		{
			Name:     "ai-estimators",
			Adapters: []string{"mistral", "gemini", "perplexity", "anthropic"},
			Needs:    []Requirement{NeedDescriptive, NeedFinancials, NeedLists},
		},
		{
			Name:     "descriptive",
			Adapters: []string{"wikipedia", "website", "logo"},
			Needs:    []Requirement{NeedDescriptive, NeedLogo},
		},
	}}
}

// LoadConfig reads a tier table from a YAML file. The YAML has a top-level
// "waterfall" key.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "waterfall: read config %s", path)
	}

	var wrapper struct {
		Waterfall Config `yaml:"waterfall"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "waterfall: parse config")
	}

	cfg := &wrapper.Waterfall
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects empty tables, unnamed or empty tiers, duplicate names and
// unknown requirements.
func (c *Config) Validate() error {
	if len(c.Tiers) == 0 {
		return eris.New("waterfall: no tiers configured")
	}
	seen := make(map[string]bool, len(c.Tiers))
	for i, t := range c.Tiers {
		if t.Name == "" {
			return eris.Errorf("waterfall: tier %d has no name", i+1)
		}
		if seen[t.Name] {
			return eris.Errorf("waterfall: duplicate tier %q", t.Name)
		}
		seen[t.Name] = true
		if len(t.Adapters) == 0 {
			return eris.Errorf("waterfall: tier %q has no adapters", t.Name)
		}
		for _, n := range t.Needs {
			switch n {
			case NeedDescriptive, NeedFinancials, NeedLists, NeedLogo:
			default:
				return eris.Errorf("waterfall: tier %q has unknown need %q", t.Name, n)
			}
		}
	}
	return nil
}

// NeedsMore reports whether the tier still has work to do for rec.
func (t Tier) NeedsMore(rec *model.CompanyRecord) bool {
	if len(t.Needs) == 0 {
		return true
	}
	for _, n := range t.Needs {
		if len(Missing(n, rec)) > 0 {
			return true
		}
	}
	return false
}

// Missing lists the fields of requirement n that rec lacks.
func Missing(n Requirement, rec *model.CompanyRecord) []string {
	var out []string
	add := func(field string, missing bool) {
		if missing {
			out = append(out, field)
		}
	}
	f := rec.Financials
	switch n {
	case NeedDescriptive:
		add("description", rec.Description == "")
		add("industry", rec.Industry == "")
		add("website", rec.Website == "")
	case NeedFinancials:
		add("financials.marketCap", f.MarketCap == nil)
		add("financials.revenue", f.Revenue == nil)
		add("financials.profitMargin", f.ProfitMargin == nil)
		add("financials.peRatio", f.PERatio == nil)
	case NeedLists:
		add("strengths", len(rec.Strengths) == 0)
		add("weaknesses", len(rec.Weaknesses) == 0)
		add("products", len(rec.Products) == 0)
	case NeedLogo:
		add("logo", rec.Logo == "")
	}
	return out
}
