// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"esfilter/pkg/esfilter"
)

// Metrics holds the collectors, registered on their own registry
type Metrics struct {
	Registry *prometheus.Registry

	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal *prometheus.CounterVec
	// RequestDuration is the latency of HTTP requests.
	RequestDuration *prometheus.HistogramVec
	// FiltersCompiled counts searches whose filter and sort compiled.
	FiltersCompiled prometheus.Counter
	// CompileErrors counts rejected filter/sort input by kind.
	CompileErrors *prometheus.CounterVec
	// SearchDuration is the latency of calls to the search cluster.
	SearchDuration *prometheus.HistogramVec
	// CacheLookups counts search cache lookups by result (hit, miss, error).
	CacheLookups *prometheus.CounterVec
}

// New creates and registers every collector
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esfilter_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "esfilter_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		FiltersCompiled: factory.NewCounter(prometheus.CounterOpts{
			Name: "esfilter_filters_compiled_total",
			Help: "Total number of search requests whose filter and sort compiled",
		}),
		CompileErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esfilter_compile_errors_total",
				Help: "Total number of rejected filter or sort inputs",
			},
			[]string{"kind"},
		),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "esfilter_search_duration_seconds",
				Help:    "Latency of search requests sent to Elasticsearch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esfilter_cache_lookups_total",
				Help: "Search cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveCompileError increments CompileErrors with the kind of err
func (m *Metrics) ObserveCompileError(err error) {
	if m == nil {
		return
	}
	m.CompileErrors.WithLabelValues(CompileErrorKind(err)).Inc()
}

// ObserveSearch records the duration of one cluster round trip
func (m *Metrics) ObserveSearch(start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SearchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// CompileErrorKind names the compile error for metric labels and logs
func CompileErrorKind(err error) string {
	var (
		opErr     *esfilter.UnknownOperatorError
		sortErr   *esfilter.MalformedSortTokenError
		decodeErr *esfilter.DecodeError
	)
	switch {
	case errors.As(err, &opErr):
		return "unknown_operator"
	case errors.As(err, &sortErr):
		return "malformed_sort_token"
	case errors.As(err, &decodeErr):
		return "decode"
	}
	return "other"
}
