// Package obs holds the service's Prometheus metrics.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by method, route pattern and
	// status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "owewow_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency per route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "owewow_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// ReceiptsSaved counts receipt snapshots persisted.
	ReceiptsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "owewow_receipts_saved_total",
		Help: "Receipt snapshots saved.",
	})

	// AssignmentsSaved counts assignment snapshots persisted.
	AssignmentsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "owewow_assignments_saved_total",
		Help: "Assignment snapshots saved.",
	})

	// SettlementsComputed counts settlement summaries served.
	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "owewow_settlements_computed_total",
		Help: "Settlement summaries computed.",
	})
)
