// Package store persists finalized company records and comparison results.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

// Store is the record cache. Keys are normalized company names for records
// and comparison ids for comparisons. Absent keys return nil, nil.
type Store interface {
	// Companies
	GetCompany(ctx context.Context, key string) (*model.CompanyRecord, error)
	PutCompany(ctx context.Context, key string, rec *model.CompanyRecord) error
	ListCompanies(ctx context.Context) ([]model.CompanyRecord, error)

	// Comparisons
	GetComparison(ctx context.Context, id string) (*model.ComparisonResult, error)
	PutComparison(ctx context.Context, id string, res *model.ComparisonResult) error

	// Prune removes entries last written before the cutoff.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// IsStale reports whether a record stamped at lastUpdated has outlived ttl.
// A record that was never stamped is always stale.
func IsStale(lastUpdated *time.Time, now time.Time, ttl time.Duration) bool {
	if lastUpdated == nil || lastUpdated.IsZero() {
		return true
	}
	return now.Sub(*lastUpdated) > ttl
}

func encodeCompany(rec *model.CompanyRecord) ([]byte, error) {
	if rec == nil {
		return nil, eris.New("store: nil company record")
	}
	data, err := json.Marshal(rec)
	return data, eris.Wrap(err, "store: marshal company")
}

func decodeCompany(data []byte) (*model.CompanyRecord, error) {
	var rec model.CompanyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal company")
	}
	return &rec, nil
}

func encodeComparison(res *model.ComparisonResult) ([]byte, error) {
	if res == nil {
		return nil, eris.New("store: nil comparison")
	}
	data, err := json.Marshal(res)
	return data, eris.Wrap(err, "store: marshal comparison")
}

func decodeComparison(data []byte) (*model.ComparisonResult, error) {
	var res model.ComparisonResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal comparison")
	}
	return &res, nil
}

// writtenAt picks the timestamp a row is indexed by.
func writtenAt(lastUpdated *time.Time) time.Time {
	if lastUpdated != nil && !lastUpdated.IsZero() {
		return lastUpdated.UTC()
	}
	return time.Now().UTC()
}
