package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
)

type memEntry struct {
	name      string
	data      []byte
	updatedAt time.Time
}

// MemoryStore implements Store with in-process maps. Values are held
// encoded so callers never share a record with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	companies   map[string]memEntry
	comparisons map[string]memEntry
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		companies:   make(map[string]memEntry),
		comparisons: make(map[string]memEntry),
	}
}

func (s *MemoryStore) GetCompany(_ context.Context, key string) (*model.CompanyRecord, error) {
	s.mu.RLock()
	e, ok := s.companies[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeCompany(e.data)
}

func (s *MemoryStore) PutCompany(_ context.Context, key string, rec *model.CompanyRecord) error {
	data, err := encodeCompany(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.companies[key] = memEntry{name: rec.Name, data: data, updatedAt: writtenAt(rec.LastUpdated)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListCompanies(_ context.Context) ([]model.CompanyRecord, error) {
	s.mu.RLock()
	entries := make([]memEntry, 0, len(s.companies))
	for _, e := range s.companies {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	out := make([]model.CompanyRecord, 0, len(entries))
	for _, e := range entries {
		rec, err := decodeCompany(e.data)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *MemoryStore) GetComparison(_ context.Context, id string) (*model.ComparisonResult, error) {
	s.mu.RLock()
	e, ok := s.comparisons[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeComparison(e.data)
}

func (s *MemoryStore) PutComparison(_ context.Context, id string, res *model.ComparisonResult) error {
	data, err := encodeComparison(res)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.comparisons[id] = memEntry{name: id, data: data, updatedAt: writtenAt(res.LastUpdated)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Prune(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range []map[string]memEntry{s.companies, s.comparisons} {
		for k, e := range m {
			if e.updatedAt.Before(before) {
				delete(m, k)
				n++
			}
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error    { return nil }
func (s *MemoryStore) Migrate(context.Context) error { return nil }
func (s *MemoryStore) Close() error                  { return nil }
