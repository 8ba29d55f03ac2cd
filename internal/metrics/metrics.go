// Package metrics holds the Prometheus collectors shared by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parcel_assistant"

var (
	// HTTP request metrics
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latencies in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests being served",
	})

	// BackendCalls counts conversational backend calls by outcome (ok, error, skipped).
	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_calls_total",
		Help:      "Calls to the conversational backend by outcome",
	}, []string{"outcome"})

	// Enrichments counts parcel enrichment attempts by outcome (located, failed).
	Enrichments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichments_total",
		Help:      "Parcel enrichment attempts by outcome",
	}, []string{"outcome"})

	// ParcelLookups counts parcel lookups by result (found, not_found, invalid).
	ParcelLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parcel_lookups_total",
		Help:      "Parcel location lookups by result",
	}, []string{"result"})
)
