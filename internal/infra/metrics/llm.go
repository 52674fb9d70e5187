package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		llmProviderCalls,
		llmProviderLatencyMs,
		llmTokensTotal,
		llmPromptTokens,
		llmChainExhausted,
	)
}

var (
	llmProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_provider_calls_total",
			Help: "Provider attempts in the fallback chain by outcome.",
		},
		[]string{"provider", "result"}, // result: ok|error|unparseable|canceled
	)

	llmProviderLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_provider_latency_ms",
			Help:    "Provider call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"provider", "success"},
	)

	llmTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Tokens consumed per provider (estimated when the provider omits usage).",
		},
		[]string{"provider", "reported"},
	)

	llmPromptTokens = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llm_prompt_tokens",
			Help:    "Estimated prompt size in tokens.",
			Buckets: []float64{32, 64, 128, 256, 512, 1024, 2048},
		},
	)

	llmChainExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_chain_exhausted_total",
			Help: "Generations where every provider failed.",
		},
	)
)

func ObserveProviderCall(provider, result string, latencyMs int64) {
	llmProviderCalls.WithLabelValues(norm(provider), norm(result)).Inc()
	llmProviderLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(result == "ok")).
		Observe(float64(latencyMs))
}

func AddTokens(provider string, tokens int, reported bool) {
	llmTokensTotal.WithLabelValues(norm(provider), strconv.FormatBool(reported)).Add(float64(tokens))
}

func ObservePromptTokens(n int) { llmPromptTokens.Observe(float64(n)) }

func IncChainExhausted() { llmChainExhausted.Inc() }
