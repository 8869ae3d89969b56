// Package metrics exposes Prometheus collectors for the HTTP layer, the
// ledger and the connection pool.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"metalstock/internal/domain/ledger"
)

const namespace = "metalstock"

// Registry owns all service collectors.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	positionsResolved *prometheus.CounterVec
	movementsRecorded *prometheus.CounterVec
	movementsReversed *prometheus.CounterVec
}

var _ ledger.Metrics = (*Registry)(nil)

// New creates collectors and registers them with a fresh registry that also
// carries the Go runtime and process collectors.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		positionsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "positions_resolved_total",
			Help:      "Position resolutions by outcome (found, created, conflict_retry).",
		}, []string{"outcome"}),
		movementsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "movements_recorded_total",
			Help:      "Recorded movements by operation.",
		}, []string{"operation"}),
		movementsReversed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "movements_reversed_total",
			Help:      "Reversed movements by operation.",
		}, []string{"operation"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequests,
		r.HTTPDuration,
		r.positionsResolved,
		r.movementsRecorded,
		r.movementsReversed,
	)
	return r
}

// Registerer exposes the registry for additional collectors.
func (r *Registry) Registerer() prometheus.Registerer { return r.reg }

// Gatherer exposes the registry to the /metrics handler.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) PositionResolved(outcome string) {
	r.positionsResolved.WithLabelValues(outcome).Inc()
}

func (r *Registry) MovementRecorded(op string) {
	r.movementsRecorded.WithLabelValues(op).Inc()
}

func (r *Registry) MovementReversed(op string) {
	r.movementsReversed.WithLabelValues(op).Inc()
}
