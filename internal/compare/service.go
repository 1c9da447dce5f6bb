package compare

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/internal/monitoring"
	"github.com/richmondnkrumah/Data-Scraper/internal/resolver"
	"github.com/richmondnkrumah/Data-Scraper/internal/store"
)

// DefaultTTL is how long a cached comparison stays fresh.
const DefaultTTL = 60 * time.Minute

// Resolver yields finalized company records.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*model.CompanyRecord, error)
}

// ComparisonError lists the companies that could not be resolved.
type ComparisonError struct {
	Missing []string
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("compare: could not resolve %s", strings.Join(e.Missing, ", "))
}

// Service resolves both sides of a comparison and caches the result.
type Service struct {
	resolver Resolver
	store    store.Store
	engine   *Engine
	ttl      time.Duration
	metrics  *monitoring.Metrics
	now      func() time.Time
}

// NewService creates a comparison service. A zero ttl uses DefaultTTL.
func NewService(r Resolver, st store.Store, ttl time.Duration, m *monitoring.Metrics) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		resolver: r,
		store:    st,
		engine:   NewEngine(),
		ttl:      ttl,
		metrics:  m,
		now:      time.Now,
	}
}

// WithNow sets the clock used for staleness and result stamps.
func (s *Service) WithNow(fn func() time.Time) *Service {
	s.now = fn
	s.engine.WithNow(fn)
	return s
}

// Compare resolves name1 and name2 concurrently and compares them. When
// either cannot be resolved it returns a *ComparisonError naming every
// missing company. A cached comparison is reused while it is fresh and
// newer than both records.
func (s *Service) Compare(ctx context.Context, name1, name2 string) (*model.ComparisonResult, error) {
	names := [2]string{strings.TrimSpace(name1), strings.TrimSpace(name2)}
	var recs [2]*model.CompanyRecord
	var errs [2]error

	var g errgroup.Group
	for i := range names {
		g.Go(func() error {
			recs[i], errs[i] = s.resolver.Resolve(ctx, names[i])
			return nil
		})
	}
	_ = g.Wait()

	var missing []string
	for i, err := range errs {
		switch {
		case err == nil && recs[i] != nil:
		case err == nil || resolver.IsNotFound(err):
			missing = append(missing, names[i])
		default:
			s.metrics.Comparison("error")
			return nil, eris.Wrapf(err, "compare: resolve %q", names[i])
		}
	}
	if len(missing) > 0 {
		s.metrics.Comparison("not_found")
		return nil, &ComparisonError{Missing: missing}
	}

	id := model.ComparisonKey(recs[0].NormalizedKey, recs[1].NormalizedKey)
	if cached := s.cached(ctx, id, recs); cached != nil {
		s.metrics.Comparison("cached")
		return cached, nil
	}

	res := s.engine.Compare(recs[0], recs[1])
	if err := s.store.PutComparison(ctx, id, res); err != nil {
		zap.L().Warn("compare: cache write failed", zap.String("comparison", id), zap.Error(err))
	}
	s.metrics.Comparison("computed")
	zap.L().Info("compare: computed",
		zap.String("comparison", id),
		zap.String("winner", res.OverallWinner),
		zap.Int("financial_metrics", len(res.FinancialComparison)),
		zap.Int("user_metrics", len(res.UserMetricsComparison)),
	)
	return res, nil
}

// Chart compares name1 and name2 and returns the chart projection named
// chartType. The type is checked before any resolution happens.
func (s *Service) Chart(ctx context.Context, name1, name2, chartType string) (any, error) {
	t, err := ParseChartType(chartType)
	if err != nil {
		return nil, err
	}
	res, err := s.Compare(ctx, name1, name2)
	if err != nil {
		return nil, err
	}
	return Select(res.ChartData, t), nil
}

func (s *Service) cached(ctx context.Context, id string, recs [2]*model.CompanyRecord) *model.ComparisonResult {
	res, err := s.store.GetComparison(ctx, id)
	if err != nil {
		zap.L().Warn("compare: cache read failed", zap.String("comparison", id), zap.Error(err))
		s.metrics.CacheLookup("comparison", "error")
		return nil
	}
	if res == nil {
		s.metrics.CacheLookup("comparison", "miss")
		return nil
	}
	if store.IsStale(res.LastUpdated, s.now(), s.ttl) || olderThan(res.LastUpdated, recs) {
		s.metrics.CacheLookup("comparison", "stale")
		return nil
	}
	s.metrics.CacheLookup("comparison", "hit")
	return res
}

// olderThan reports whether a comparison stamped at t predates either
// record it was built from.
func olderThan(t *time.Time, recs [2]*model.CompanyRecord) bool {
	for _, r := range recs {
		if r.LastUpdated != nil && t.Before(*r.LastUpdated) {
			return true
		}
	}
	return false
}
