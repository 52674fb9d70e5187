package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestsTotal, rateLimitedTotal, authAttemptsTotal) }

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		},
		[]string{"route", "method", "code"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the API rate limiter.",
		},
	)

	authAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Register and login attempts by outcome.",
		},
		[]string{"action", "status"},
	)
)

func IncHTTPRequest(route, method string, code int) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

func IncRateLimited() { rateLimitedTotal.Inc() }

func IncAuthAttempt(action, status string) {
	authAttemptsTotal.WithLabelValues(norm(action), norm(status)).Inc()
}
