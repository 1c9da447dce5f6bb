package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus instruments. The zero value is not
// usable; call NewMetrics. A nil *Metrics is safe to call and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	breakerState     *prometheus.GaugeVec
	resolutions      *prometheus.CounterVec
	resolveDuration  prometheus.Histogram
	cacheLookups     *prometheus.CounterVec
	comparisons      *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	storeUp          prometheus.Gauge
}

// NewMetrics registers every instrument on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datascraper",
			Name:      "provider_calls_total",
			Help:      "Provider adapter calls by outcome.",
		}, []string{"provider", "outcome"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "datascraper",
			Name:      "provider_call_seconds",
			Help:      "Provider adapter call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "datascraper",
			Name:      "provider_breaker_open",
			Help:      "1 when the provider's circuit breaker is not closed.",
		}, []string{"provider"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datascraper",
			Name:      "resolutions_total",
			Help:      "Company resolutions by result.",
		}, []string{"result"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "datascraper",
			Name:      "resolution_seconds",
			Help:      "Full provider cascade latency.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datascraper",
			Name:      "cache_lookups_total",
			Help:      "Record cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datascraper",
			Name:      "comparisons_total",
			Help:      "Comparisons by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datascraper",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "datascraper",
			Name:      "http_request_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		storeUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "datascraper",
			Name:      "store_up",
			Help:      "1 when the last store ping succeeded.",
		}),
	}
	m.registry.MustRegister(
		m.providerCalls, m.providerDuration, m.breakerState,
		m.resolutions, m.resolveDuration, m.cacheLookups, m.comparisons,
		m.httpRequests, m.httpDuration, m.storeUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ProviderCall records one adapter call. Outcome is one of ok, empty,
// error, skipped, open or panic.
func (m *Metrics) ProviderCall(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, outcome).Inc()
	if outcome != "skipped" && outcome != "open" {
		m.providerDuration.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// BreakerOpen sets the provider's breaker gauge.
func (m *Metrics) BreakerOpen(provider string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.breakerState.WithLabelValues(provider).Set(v)
}

// Resolution records one finished cascade.
func (m *Metrics) Resolution(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(result).Inc()
	m.resolveDuration.Observe(d.Seconds())
}

// CacheLookup records a cache hit, stale hit, miss or negative hit.
func (m *Metrics) CacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

// Comparison records one comparison request.
func (m *Metrics) Comparison(result string) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(result).Inc()
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// StoreUp sets the store connectivity gauge.
func (m *Metrics) StoreUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.storeUp.Set(1)
		return
	}
	m.storeUp.Set(0)
}
