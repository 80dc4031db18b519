package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_gateway_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_classifications_total",
			Help: "Query classification outcomes",
		},
		[]string{"type"},
	)

	PromptResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_prompt_resolutions_total",
			Help: "Prompt resolutions by source tier",
		},
		[]string{"tier"},
	)

	PromptTierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_prompt_tier_failures_total",
			Help: "Prompt resolution failures per tier",
		},
		[]string{"tier"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_cache_hits_total",
			Help: "Cache hits by cache class",
		},
		[]string{"class"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_cache_misses_total",
			Help: "Cache misses by cache class",
		},
		[]string{"class"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_gateway_provider_latency_seconds",
			Help: "Provider call latency in seconds",
		},
		[]string{"provider"},
	)

	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_provider_errors_total",
			Help: "Provider errors by provider and kind",
		},
		[]string{"provider", "kind"},
	)

	ContextTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_gateway_context_truncations_total",
			Help: "Requests whose conversation history was truncated to fit the context budget",
		},
	)

	ForcedInvocations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_gateway_forced_invocations_total",
			Help: "Tool calls synthesized because the model did not invoke the tool",
		},
	)

	ToolFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gateway_tool_fetches_total",
			Help: "Data retrieval fetches by domain and outcome",
		},
		[]string{"domain", "outcome"},
	)
)
