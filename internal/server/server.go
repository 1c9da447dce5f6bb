// Package server exposes company lookups and comparisons over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/compare"
	"github.com/richmondnkrumah/Data-Scraper/internal/model"
	"github.com/richmondnkrumah/Data-Scraper/internal/monitoring"
	"github.com/richmondnkrumah/Data-Scraper/internal/resolver"
)

// Companies resolves and lists company records.
type Companies interface {
	Resolve(ctx context.Context, name string) (*model.CompanyRecord, error)
	Refresh(ctx context.Context, name string) (*model.CompanyRecord, error)
	List(ctx context.Context) ([]model.CompanyRecord, error)
}

// Comparisons builds comparisons and their chart projections.
type Comparisons interface {
	Compare(ctx context.Context, name1, name2 string) (*model.ComparisonResult, error)
	Chart(ctx context.Context, name1, name2, chartType string) (any, error)
}

// Health reports a service health snapshot.
type Health interface {
	Collect(ctx context.Context) (*monitoring.Snapshot, error)
}

// Options tunes the router.
type Options struct {
	DevMode        bool
	RequestTimeout time.Duration
	MetricsPath    string
	Metrics        *monitoring.Metrics
}

// Server holds the HTTP handlers.
type Server struct {
	companies   Companies
	comparisons Comparisons
	health      Health
	metrics     *monitoring.Metrics
	devMode     bool
	timeout     time.Duration
	metricsPath string
}

// New creates a Server.
func New(companies Companies, comparisons Comparisons, health Health, opts Options) *Server {
	return &Server{
		companies:   companies,
		comparisons: comparisons,
		health:      health,
		metrics:     opts.Metrics,
		devMode:     opts.DevMode,
		timeout:     opts.RequestTimeout,
		metricsPath: opts.MetricsPath,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(s.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeFail(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeFail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.handleHealth)
	if s.metrics != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/companies", s.handleListCompanies)
		r.Get("/companies/{name}", s.handleGetCompany)
		r.Get("/comparison", s.handleComparison)
		r.Get("/comparison/chart/{type}", s.handleChart)
	})
	return r
}

// handleHealth always answers 200; a failing collector degrades to a bare
// snapshot.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.health.Collect(r.Context())
	if err != nil {
		zap.L().Warn("server: health collection failed", zap.Error(err))
		now := time.Now().UTC()
		snap = &monitoring.Snapshot{Status: "OK", Timestamp: now, Version: monitoring.Version, APIs: map[string]bool{}}
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	recs, err := s.companies.List(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	writeList(w, recs)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))

	lookup := s.companies.Resolve
	if r.URL.Query().Get("refresh") == "true" {
		lookup = s.companies.Refresh
	}
	rec, err := lookup(r.Context(), name)
	switch {
	case err == nil && rec != nil:
		writeData(w, rec)
	case err == nil || resolver.IsNotFound(err):
		writeFail(w, http.StatusNotFound, fmt.Sprintf("Company '%s' not found or data fetch failed.", name))
	default:
		s.writeInternal(w, r, err)
	}
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	c1, c2, ok := pair(r)
	if !ok {
		writeFail(w, http.StatusBadRequest, "Missing company1 or company2 parameter.")
		return
	}
	res, err := s.comparisons.Compare(r.Context(), c1, c2)
	if err != nil {
		s.writeCompareError(w, r, err)
		return
	}
	writeData(w, res)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	c1, c2, ok := pair(r)
	if !ok {
		writeFail(w, http.StatusBadRequest, "Missing company1 or company2 parameter for chart data.")
		return
	}
	data, err := s.comparisons.Chart(r.Context(), c1, c2, chi.URLParam(r, "type"))
	if err != nil {
		s.writeCompareError(w, r, err)
		return
	}
	writeData(w, data)
}

func (s *Server) writeCompareError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *compare.ComparisonError
	var unknown *compare.UnknownChartError
	switch {
	case errors.As(err, &unknown):
		writeFail(w, http.StatusBadRequest, unknown.Error())
	case errors.As(err, &missing):
		writeJSON(w, http.StatusNotFound, failBody{
			Status:  statusFail,
			Message: "One or both companies could not be found or data fetched.",
			Missing: missing.Missing,
		})
	default:
		s.writeInternal(w, r, err)
	}
}

func pair(r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	c1, c2 := strings.TrimSpace(q.Get("company1")), strings.TrimSpace(q.Get("company2"))
	return c1, c2, c1 != "" && c2 != ""
}
