package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the Prometheus metrics the API and reconciler emit.
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    prometheus.Histogram
	reconciliations *prometheus.CounterVec
	transitions     *prometheus.CounterVec
}

// NewCollector registers the application metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbridge_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodbridge_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbridge_reconciliations_total",
			Help: "Session reconciliations by resulting phase.",
		}, []string{"phase"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbridge_request_transitions_total",
			Help: "Donation request transition attempts by target status and outcome.",
		}, []string{"to", "outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.reconciliations,
		c.transitions,
	)

	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.Observe(duration.Seconds())
}

// RecordReconciliation records the phase a reconciliation resolved to.
func (c *Collector) RecordReconciliation(phase string) {
	c.reconciliations.WithLabelValues(phase).Inc()
}

// RecordTransition records a lifecycle transition attempt.
func (c *Collector) RecordTransition(to string, succeeded bool) {
	outcome := "success"
	if !succeeded {
		outcome = "rejected"
	}
	c.transitions.WithLabelValues(to, outcome).Inc()
}

// Handler exposes the registry over HTTP.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
