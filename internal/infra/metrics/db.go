package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(dbPoolStats, dbQueryErrors) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"driver", "state"}, // state: total|idle|in_use
	)

	dbQueryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Failed repository operations by driver and operation.",
		},
		[]string{"driver", "op"},
	)
)

func SetDBPoolStats(driver string, total, idle, inUse int32) {
	dbPoolStats.WithLabelValues(driver, "total").Set(float64(total))
	dbPoolStats.WithLabelValues(driver, "idle").Set(float64(idle))
	dbPoolStats.WithLabelValues(driver, "in_use").Set(float64(inUse))
}

func IncDBError(driver, op string) { dbQueryErrors.WithLabelValues(driver, op).Inc() }
