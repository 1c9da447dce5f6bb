package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/richmondnkrumah/Data-Scraper/internal/compare"
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/internal/monitoring"
	"github.com/richmondnkrumah/Data-Scraper/internal/resolver"
)

type mockCompanies struct {
	mock.Mock
}

func (m *mockCompanies) Resolve(ctx context.Context, name string) (*model.CompanyRecord, error) {
	args := m.Called(ctx, name)
	rec, _ := args.Get(0).(*model.CompanyRecord)
	return rec, args.Error(1)
}

func (m *mockCompanies) Refresh(ctx context.Context, name string) (*model.CompanyRecord, error) {
	args := m.Called(ctx, name)
	rec, _ := args.Get(0).(*model.CompanyRecord)
	return rec, args.Error(1)
}

func (m *mockCompanies) List(ctx context.Context) ([]model.CompanyRecord, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]model.CompanyRecord)
	return recs, args.Error(1)
}

type fakeComparisons struct {
	result *model.ComparisonResult
	chart  any
	err    error
	panics bool
}

func (f *fakeComparisons) Compare(context.Context, string, string) (*model.ComparisonResult, error) {
	if f.panics {
		panic("comparison exploded")
	}
	return f.result, f.err
}

func (f *fakeComparisons) Chart(_ context.Context, _, _, chartType string) (any, error) {
	if _, err := compare.ParseChartType(chartType); err != nil {
		return nil, err
	}
	return f.chart, f.err
}

type fakeHealth struct {
	snap *monitoring.Snapshot
	err  error
}

func (f *fakeHealth) Collect(context.Context) (*monitoring.Snapshot, error) { return f.snap, f.err }

type fixture struct {
	companies   *mockCompanies
	comparisons *fakeComparisons
	health      *fakeHealth
	metrics     *monitoring.Metrics
	devMode     bool
}

func newFixture() *fixture {
	return &fixture{
		companies:   &mockCompanies{},
		comparisons: &fakeComparisons{},
		health: &fakeHealth{snap: &monitoring.Snapshot{
			Status:  "OK",
			Version: monitoring.Version,
			Port:    3000,
			APIs:    map[string]bool{"yahoo": true, "mistral": false},
		}},
		metrics: monitoring.NewMetrics(),
	}
}

func (f *fixture) do(t *testing.T, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	s := New(f.companies, f.comparisons, f.health, Options{
		DevMode:        f.devMode,
		RequestTimeout: 5 * time.Second,
		MetricsPath:    "/metrics",
		Metrics:        f.metrics,
	})
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	f := newFixture()

	for _, path := range []string{"/api/health", "/health"} {
		rec, body := f.do(t, path)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", body["status"])
		assert.Equal(t, "1.0.0", body["version"])
		assert.Equal(t, map[string]any{"yahoo": true, "mistral": false}, body["apis"])
	}
}

func TestHealth_NeverFails(t *testing.T) {
	f := newFixture()
	f.health = &fakeHealth{err: eris.New("store exploded")}

	rec, body := f.do(t, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
}

func TestListCompanies(t *testing.T) {
	f := newFixture()
	f.companies.On("List", mock.Anything).Return([]model.CompanyRecord{
		*model.NewCompanyRecord("Apple"),
		*model.NewCompanyRecord("Microsoft"),
	}, nil)

	rec, body := f.do(t, "/api/companies")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, 2.0, body["results"])
	data := body["data"].([]any)
	assert.Equal(t, "Apple", data[0].(map[string]any)["name"])
}

func TestListCompanies_Empty(t *testing.T) {
	f := newFixture()
	f.companies.On("List", mock.Anything).Return(nil, nil)

	_, body := f.do(t, "/api/companies")
	assert.Equal(t, 0.0, body["results"])
	assert.Equal(t, []any{}, body["data"])
}

func TestGetCompany(t *testing.T) {
	f := newFixture()
	rec := model.NewCompanyRecord("Apple Inc")
	rec.DataSource = "yahoo"
	f.companies.On("Resolve", mock.Anything, "Apple Inc").Return(rec, nil)

	resp, body := f.do(t, "/api/companies/Apple%20Inc")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "yahoo", body["data"].(map[string]any)["dataSource"])
	f.companies.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestGetCompany_Refresh(t *testing.T) {
	f := newFixture()
	f.companies.On("Refresh", mock.Anything, "Apple").Return(model.NewCompanyRecord("Apple"), nil)

	resp, _ := f.do(t, "/api/companies/Apple?refresh=true")
	assert.Equal(t, http.StatusOK, resp.Code)
	f.companies.AssertExpectations(t)
}

func TestGetCompany_NotFound(t *testing.T) {
	f := newFixture()
	f.companies.On("Resolve", mock.Anything, "Nonexistent").
		Return(nil, &resolver.NotFoundError{Name: "Nonexistent"})

	resp, body := f.do(t, "/api/companies/Nonexistent")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Company 'Nonexistent' not found or data fetch failed.", body["message"])
}

func TestGetCompany_InternalError(t *testing.T) {
	f := newFixture()
	f.companies.On("Resolve", mock.Anything, "Acme").Return(nil, eris.New("boom"))

	resp, body := f.do(t, "/api/companies/Acme")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, body, "stack")
}

func TestGetCompany_InternalErrorDevMode(t *testing.T) {
	f := newFixture()
	f.devMode = true
	f.companies.On("Resolve", mock.Anything, "Acme").Return(nil, eris.New("boom"))

	_, body := f.do(t, "/api/companies/Acme")
	assert.Contains(t, body["stack"], "boom")
}

func TestComparison(t *testing.T) {
	f := newFixture()
	f.comparisons.result = &model.ComparisonResult{ID: "apple-microsoft", OverallWinner: "id-1"}

	resp, body := f.do(t, "/api/comparison?company1=Apple&company2=Microsoft")
	assert.Equal(t, http.StatusOK, resp.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "apple-microsoft", data["id"])
}

func TestComparison_MissingParams(t *testing.T) {
	f := newFixture()

	for _, target := range []string{"/api/comparison", "/api/comparison?company1=Apple", "/api/comparison?company1=%20&company2=B"} {
		resp, body := f.do(t, target)
		assert.Equal(t, http.StatusBadRequest, resp.Code, target)
		assert.Equal(t, "Missing company1 or company2 parameter.", body["message"], target)
	}
}

func TestComparison_Unresolved(t *testing.T) {
	f := newFixture()
	f.comparisons.err = &compare.ComparisonError{Missing: []string{"Nobody"}}

	resp, body := f.do(t, "/api/comparison?company1=Apple&company2=Nobody")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "One or both companies could not be found or data fetched.", body["message"])
	assert.Equal(t, []any{"Nobody"}, body["missing"])
}

func TestChart(t *testing.T) {
	f := newFixture()
	f.comparisons.chart = model.Chart{Labels: []string{"Market Cap (B)"}}

	resp, body := f.do(t, "/api/comparison/chart/financial?company1=A&company2=B")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []any{"Market Cap (B)"}, body["data"].(map[string]any)["labels"])
}

func TestChart_Errors(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, "/api/comparison/chart/financial?company1=A")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Missing company1 or company2 parameter for chart data.", body["message"])

	resp, body = f.do(t, "/api/comparison/chart/pie?company1=A&company2=B")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Unknown chart type: pie", body["message"])
}

func TestNotFoundRoute(t *testing.T) {
	f := newFixture()

	resp, body := f.do(t, "/api/nothing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "Endpoint not found", body["message"])
}

func TestPanicRecovered(t *testing.T) {
	f := newFixture()
	f.comparisons.panics = true

	resp, body := f.do(t, "/api/comparison?company1=A&company2=B")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, body, "stack")

	f.devMode = true
	_, body = f.do(t, "/api/comparison?company1=A&company2=B")
	assert.Contains(t, body["stack"], "comparison exploded")
}

func TestCORS(t *testing.T) {
	f := newFixture()
	s := New(f.companies, f.comparisons, f.health, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture()
	f.do(t, "/api/health")

	resp, _ := f.do(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `datascraper_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}
