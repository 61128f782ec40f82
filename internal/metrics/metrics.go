package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "radar"

// Metrics holds the collectors shared by the data layer and the HTTP server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	backendRequests *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	catalogLoads    *prometheus.CounterVec
	watchlistSize   prometheus.Gauge
}

// New creates a registry with Go and process collectors plus the radar metrics
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_fetches_total",
			Help:      "Snapshot resource fetch attempts by resolution strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Company catalog loads by outcome (hit, refreshed, error).",
		}, []string{"outcome"}),
		watchlistSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watchlist_size",
			Help:      "Number of company codes in the watchlist.",
		}),
	}
	reg.MustRegister(m.fetches, m.backendRequests, m.httpRequests, m.httpDuration, m.catalogLoads, m.watchlistSize)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Fetch(strategy, outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) BackendRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) CatalogLoad(outcome string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WatchlistSize(n int) {
	if m == nil {
		return
	}
	m.watchlistSize.Set(float64(n))
}
