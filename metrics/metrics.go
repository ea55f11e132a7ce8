// Package metrics registers the engine's prometheus instrumentation, in the
// promauto style of cayley's graph/kv/metrics.go: package-level vars built
// once at init time, incremented from the step/store/traversal packages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StepApplied counts how many times each named step's Apply ran.
	StepApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loom_step_applied_total",
		Help: "Number of times each step's Apply was invoked.",
	}, []string{"step"})

	// StepItemsOut counts items emitted by each named step.
	StepItemsOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loom_step_items_emitted_total",
		Help: "Number of items emitted downstream by each step.",
	}, []string{"step"})

	// IndexBloomHits counts quad index lookups on an active pair that found
	// no entry, mirroring cayley_kv_quads_bloom_hits's "hit == negative
	// result returned" convention. The index answers these lookups from its
	// backing map; its bloom filters are not consulted.
	IndexBloomHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loom_index_bloom_hits_total",
		Help: "Number of quad index lookups that returned a negative result.",
	})

	// IndexBloomMisses counts quad index lookups on an active pair that
	// found an entry.
	IndexBloomMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loom_index_bloom_misses_total",
		Help: "Number of quad index lookups that returned a positive result.",
	})

	// TraversalDuration records wall time spent in Traversal.Run.
	TraversalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "loom_traversal_duration_seconds",
		Help: "Time spent running a traversal to completion.",
	})

	// GraphNodes and GraphEdges track store size as gauges.
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loom_graph_nodes",
		Help: "Number of nodes currently in the graph.",
	})
	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loom_graph_edges",
		Help: "Number of edges currently in the graph.",
	})
)

// ObserveTraversal records d against the TraversalDuration histogram; a
// thin wrapper so callers can time.Since(start) without importing
// prometheus directly.
func ObserveTraversal(d time.Duration) {
	TraversalDuration.Observe(d.Seconds())
}
