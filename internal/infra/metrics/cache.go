package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, cacheEntries, cacheEvictedTotal) }

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Tracks cache hits and misses for various caches.",
		},
		[]string{"cache", "result"}, // e.g., cache="suggestion", result="hit"
	)

	cacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of entries held by a cache.",
		},
		[]string{"cache"},
	)

	cacheEvictedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evicted_total",
			Help: "Expired entries removed by lazy expiry or the periodic sweep.",
		},
		[]string{"cache", "via"}, // via: read|sweep
	)
)

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func SetCacheEntries(cacheName string, n int) {
	cacheEntries.WithLabelValues(norm(cacheName)).Set(float64(n))
}

func AddCacheEvicted(cacheName, via string, n int) {
	cacheEvictedTotal.WithLabelValues(norm(cacheName), norm(via)).Add(float64(n))
}
