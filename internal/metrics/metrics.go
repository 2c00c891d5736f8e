// Package metrics exposes the process Prometheus metrics. promauto registers
// everything on import, so handlers just increment.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts processed HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raggate_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "raggate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// ChunksIngested counts chunks written through the vector store.
	ChunksIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raggate_chunks_ingested_total",
			Help: "Total number of chunks written to the vector store",
		},
	)

	// QueriesServed counts answered /ask requests.
	QueriesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raggate_queries_served_total",
			Help: "Total number of retrieval queries served",
		},
	)
)
