package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and every collector the service exports
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	EventOps        *prometheus.CounterVec
	CatalogLookups  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		EventOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealcal_calendar_operations_total",
				Help: "Calendar event operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		CatalogLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealcal_catalog_lookups_total",
				Help: "Recipe catalog lookups by cache result",
			},
			[]string{"kind", "cache"},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.EventOps,
		m.CatalogLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvent counts one calendar operation. Safe on a nil receiver.
func (m *Metrics) ObserveEvent(operation, outcome string) {
	if m == nil {
		return
	}
	m.EventOps.WithLabelValues(operation, outcome).Inc()
}

// ObserveCatalog counts one catalog lookup. Safe on a nil receiver.
func (m *Metrics) ObserveCatalog(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CatalogLookups.WithLabelValues(kind, result).Inc()
}
