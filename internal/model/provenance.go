package model

// SourceEstimate labels values synthesized from the company name.
const SourceEstimate = "Estimate"

// SourceNoData is the data source of a record no provider could fill.
const SourceNoData = "Error - No Data Retrieved"

// ProvenanceEntry records which provider supplied a field. Entries are
// append-only and there is at most one per field.
type ProvenanceEntry struct {
	Field  string `json:"field"`
	Source string `json:"source"`
	Value  any    `json:"value"`
}

// Provenance returns the entry for field, if any.
func (r *CompanyRecord) Provenance(field string) (ProvenanceEntry, bool) {
	for _, e := range r.DataSourceDetails {
		if e.Field == field {
			return e, true
		}
	}
	return ProvenanceEntry{}, false
}

// Sources returns the distinct provider labels in first-seen order.
func (r *CompanyRecord) Sources() []string {
	seen := make(map[string]bool, len(r.DataSourceDetails))
	var out []string
	for _, e := range r.DataSourceDetails {
		if seen[e.Source] {
			continue
		}
		seen[e.Source] = true
		out = append(out, e.Source)
	}
	return out
}
