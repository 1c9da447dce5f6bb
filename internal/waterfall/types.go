package waterfall

import "time"

// AdapterResult is one adapter's contribution to a tier.
type AdapterResult struct {
	Provider string `json:"provider"`
	// Answered is false when the adapter was disabled, failed or had
	// nothing to say.
	Answered bool `json:"answered"`
	// Fields is how many fields the merge actually took from it.
	Fields int `json:"fields"`
}

// TierResult is the outcome of one tier.
type TierResult struct {
	Name     string          `json:"name"`
	Skipped  bool            `json:"skipped"`
	Adapters []AdapterResult `json:"adapters,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// Result is the overall trace of one cascade.
type Result struct {
	StartedAt     time.Time    `json:"started_at"`
	Symbol        string       `json:"symbol,omitempty"`
	SymbolSource  string       `json:"symbol_source,omitempty"`
	Tiers         []TierResult `json:"tiers"`
	FieldsWritten int          `json:"fields_written"`
}

// Answered lists the providers that contributed at least one field, in
// merge order.
func (r *Result) Answered() []string {
	var out []string
	for _, t := range r.Tiers {
		for _, a := range t.Adapters {
			if a.Fields > 0 {
				out = append(out, a.Provider)
			}
		}
	}
	return out
}
