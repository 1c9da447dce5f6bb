package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/internal/store"
)

// downStore fails every ping.
type downStore struct {
	*store.MemoryStore
	pingErr error
	listErr error
}

func (s *downStore) Ping(context.Context) error { return s.pingErr }

func (s *downStore) ListCompanies(ctx context.Context) ([]model.CompanyRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MemoryStore.ListCompanies(ctx)
}

type staticAdapters map[string]bool

func (s staticAdapters) Enabled() map[string]bool { return s }

type staticBreakers map[string]string

func (s staticBreakers) Snapshot() map[string]string { return s }

func TestCollector_Collect(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.PutCompany(ctx, "acme", model.NewCompanyRecord("Acme")))
	require.NoError(t, st.PutCompany(ctx, "globex", model.NewCompanyRecord("Globex")))

	m := NewMetrics()
	c := NewCollector(st, "memory",
		staticAdapters{"yahoo": true, "mistral": false},
		staticBreakers{"yahoo": "closed", "finnhub": "open"},
		m,
	)
	c.SetPort(9001)
	start := c.started
	c.now = func() time.Time { return start.Add(90 * time.Second) }

	snap, err := c.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "OK", snap.Status)
	assert.Equal(t, Version, snap.Version)
	assert.Equal(t, 9001, snap.Port)
	assert.InDelta(t, 90, snap.Uptime, 0.001)
	assert.Equal(t, time.UTC, snap.Timestamp.Location())
	assert.Positive(t, snap.Memory.HeapUsed)
	assert.Equal(t, map[string]bool{"yahoo": true, "mistral": false}, snap.APIs)
	assert.Equal(t, StoreStatus{Driver: "memory", Up: true}, snap.Store)
	assert.Equal(t, 2, snap.CachedCompanies)
	assert.Equal(t, []string{"finnhub"}, snap.OpenBreakers())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeUp))
}

func TestCollector_StoreDown(t *testing.T) {
	st := &downStore{MemoryStore: store.NewMemory(), pingErr: eris.New("connection refused")}
	m := NewMetrics()
	c := NewCollector(st, "redis", nil, nil, m)

	snap, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.False(t, snap.Store.Up)
	assert.Equal(t, "redis", snap.Store.Driver)
	assert.Contains(t, snap.Store.Error, "connection refused")
	assert.Empty(t, snap.APIs)
	assert.Nil(t, snap.Breakers)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.storeUp))
}

func TestCollector_ListError(t *testing.T) {
	st := &downStore{MemoryStore: store.NewMemory(), listErr: eris.New("scan failed")}
	c := NewCollector(st, "postgres", nil, nil, nil)

	_, err := c.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list companies")
}
