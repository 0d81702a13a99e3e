package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aa_gateway"

// Outcome labels for AA network calls
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Session lookup results
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Registry owns the gateway's collectors. Each instance has its own
// prometheus registry so tests can construct one per case.
type Registry struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	networkCalls    *prometheus.CounterVec
	sessionLookups  *prometheus.CounterVec
}

// New creates a Registry with process and Go runtime collectors attached
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		networkCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "network_calls_total",
			Help:      "Outbound AA network calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		sessionLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_lookups_total",
			Help:      "Session resolutions by result.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.requestDuration,
		r.networkCalls,
		r.sessionLookups,
	)
	return r
}

// Handler exposes the registry in prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry for inspection
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one inbound request
func (r *Registry) ObserveRequest(route, method, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, method, status).Inc()
	r.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// NetworkCall records one outbound AA network call
func (r *Registry) NetworkCall(operation string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.networkCalls.WithLabelValues(operation, outcome).Inc()
}

// SessionLookup records one session resolution
func (r *Registry) SessionLookup(result string) {
	if r == nil {
		return
	}
	r.sessionLookups.WithLabelValues(result).Inc()
}
