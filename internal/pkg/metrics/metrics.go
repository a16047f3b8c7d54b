// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campus"

var (
	// CodesGenerated counts enrollment codes handed out.
	CodesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "codegen",
		Name:      "codes_generated_total",
		Help:      "Enrollment codes generated.",
	})

	// CodeCollisions counts candidates rejected because a section already uses them.
	CodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "codegen",
		Name:      "collisions_total",
		Help:      "Enrollment code candidates that were already taken.",
	})

	// CodeExhausted counts generations that ran out of attempts.
	CodeExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "codegen",
		Name:      "exhausted_total",
		Help:      "Enrollment code generations that gave up.",
	})

	// Enrollments counts enroll attempts by outcome.
	Enrollments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "enrollment",
		Name:      "attempts_total",
		Help:      "Enroll attempts by result.",
	}, []string{"result"})

	// CascadeBlocked counts deactivations refused because live dependents exist.
	CascadeBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cascade",
		Name:      "blocked_total",
		Help:      "Deactivations or deletions blocked by live dependents.",
	}, []string{"entity"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// SeatSubscribers tracks open seat-feed websocket connections.
	SeatSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "seatfeed",
		Name:      "subscribers",
		Help:      "Open seat feed connections.",
	})
)

// Enrollment results.
const (
	ResultEnrolled  = "enrolled"
	ResultFull      = "full"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
