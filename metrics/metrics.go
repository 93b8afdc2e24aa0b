// Package metrics provides Prometheus metrics for the reference API:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - store_request_duration_seconds: Histogram of document store calls
//   - reference_lookups_total: Counter of reference-code lookup outcomes
//
// All metrics are registered with the Prometheus default registry
// during package initialization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reference lookup outcomes.
const (
	LookupResolved = "resolved"
	LookupEmpty    = "empty"
	LookupFailed   = "failed"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of client rate limiter buckets currently held",
		},
	)

	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_request_duration_seconds",
			Help:    "Document store call latency",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "collection", "result"},
	)

	ReferenceLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reference_lookups_total",
			Help: "Reference code lookups by outcome",
		},
		[]string{"outcome"},
	)

	StoreUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_up",
			Help: "1 when the last document store probe succeeded",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(StoreRequestDuration)
	prometheus.MustRegister(ReferenceLookupsTotal)
	prometheus.MustRegister(StoreUp)
}

// ObserveStoreCall records the latency of one store call started at start.
func ObserveStoreCall(operation, collection string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreRequestDuration.WithLabelValues(operation, collection, result).Observe(time.Since(start).Seconds())
}

// RecordReferenceLookup counts one lookup outcome.
func RecordReferenceLookup(outcome string) {
	ReferenceLookupsTotal.WithLabelValues(outcome).Inc()
}

// SetStoreUp mirrors the last probe result.
func SetStoreUp(up bool) {
	if up {
		StoreUp.Set(1)
		return
	}
	StoreUp.Set(0)
}
