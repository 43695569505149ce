// Package metrics exposes Prometheus instrumentation for the sync service
// together with the small operational HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpngraph_sync_runs_total",
			Help: "Total number of sync runs by result",
		},
		[]string{"result"},
	)

	syncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vpngraph_sync_duration_seconds",
			Help:    "Duration of a full sync run in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	lastSuccessTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vpngraph_sync_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful sync run",
		},
	)

	graphNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vpngraph_graph_nodes",
			Help: "Node count written by the last successful sync run",
		},
	)

	graphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vpngraph_graph_edges",
			Help: "Tunnel edge count written by the last successful sync run",
		},
	)

	skippedTunnels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vpngraph_sync_skipped_tunnels",
			Help: "Tunnels skipped as unrepresentable in the last sync run",
		},
	)
)

// ObserveRunSuccess records a completed run and refreshes the graph-size
// gauges.
func ObserveRunSuccess(duration time.Duration, nodes, edges, skipped int) {
	syncRunsTotal.WithLabelValues("success").Inc()
	syncDuration.Observe(duration.Seconds())
	lastSuccessTimestamp.SetToCurrentTime()
	graphNodes.Set(float64(nodes))
	graphEdges.Set(float64(edges))
	skippedTunnels.Set(float64(skipped))
}

// ObserveRunFailure records a failed run. Graph-size gauges keep the values
// of the last successful run.
func ObserveRunFailure(duration time.Duration) {
	syncRunsTotal.WithLabelValues("failure").Inc()
	syncDuration.Observe(duration.Seconds())
}
