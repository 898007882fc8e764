package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	auditsTotal           *prometheus.CounterVec
	auditDurationSeconds  prometheus.Histogram
	dashboardCacheLookups *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exposed by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditor",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "auditor",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditor",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		auditsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditor",
			Name:      "audits_total",
			Help:      "Essay audits by pipeline outcome.",
		}, []string{"outcome"})

		auditDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "auditor",
			Name:      "audit_duration_seconds",
			Help:      "End-to-end duration of essay audits that reached inference.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		})

		dashboardCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditor",
			Name:      "dashboard_cache_lookups_total",
			Help:      "Dashboard cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			auditsTotal,
			auditDurationSeconds,
			dashboardCacheLookups,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AuditOutcomes counts audits by outcome label.
func AuditOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return auditsTotal
}

// AuditDuration observes the duration of audits that reached inference.
func AuditDuration() prometheus.Histogram {
	RegisterMetrics()
	return auditDurationSeconds
}

// DashboardCacheLookups counts dashboard cache hits and misses.
func DashboardCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheLookups
}
