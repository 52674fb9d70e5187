package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(suggestionRequests, suggestionUnknownTone, usageRecordFailures) }

var (
	suggestionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestion_requests_total",
			Help: "Suggestion requests by how they were served.",
		},
		[]string{"source"}, // cache|live|degraded
	)

	suggestionUnknownTone = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestion_unknown_tone_total",
			Help: "Requests naming a tone outside the catalog (served as friendly).",
		},
	)

	usageRecordFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_record_failures_total",
			Help: "Usage events that could not be recorded or queued.",
		},
	)
)

func IncSuggestion(source string) { suggestionRequests.WithLabelValues(norm(source)).Inc() }

func IncUnknownTone() { suggestionUnknownTone.Inc() }

func IncUsageRecordFailure() { usageRecordFailures.Inc() }
