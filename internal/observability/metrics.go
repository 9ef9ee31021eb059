package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
	errorsTotal           *prometheus.CounterVec
	authzDenialsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the console API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_requests_total",
			Help: "Total number of console API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_request_latency_seconds",
			Help:    "Latency distribution for console API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_errors_total",
			Help: "Total number of error responses returned by console endpoints.",
		}, []string{"method", "route", "status"})

		authzDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_authz_denials_total",
			Help: "Total number of authorization denials, by actor role and deny reason.",
		}, []string{"role", "reason"})

		prometheus.MustRegister(requestsTotal, requestLatencySeconds, errorsTotal, authzDenialsTotal)
	})
}

// Requests exposes the counter for console requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for console requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// Errors exposes the counter for console error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// AuthzDenials exposes the counter for authorization denials.
func AuthzDenials() *prometheus.CounterVec {
	RegisterMetrics()
	return authzDenialsTotal
}
