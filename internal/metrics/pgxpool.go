package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterInventoryPoolMetrics exposes the inventory connection pool
// statistics as Prometheus gauges.
func RegisterInventoryPoolMetrics(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vpngraph_inventory_pool_acquired_conns",
			Help: "Number of currently acquired inventory connections",
		}, func() float64 {
			return float64(pool.Stat().AcquiredConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vpngraph_inventory_pool_max_conns",
			Help: "Maximum number of inventory connections in the pool",
		}, func() float64 {
			return float64(pool.Stat().MaxConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vpngraph_inventory_pool_total_conns",
			Help: "Total number of inventory connections in the pool",
		}, func() float64 {
			return float64(pool.Stat().TotalConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "vpngraph_inventory_pool_idle_conns",
			Help: "Number of idle inventory connections in the pool",
		}, func() float64 {
			return float64(pool.Stat().IdleConns())
		}),
	)
}
