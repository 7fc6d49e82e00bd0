package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsToolCallsSucceeded is base for counter metric for tool calls that returned data
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool", "reason"},
	}

	StatsUpstreamRequests = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_upstream_requests",
		Help:         "stats_upstream_requests provides total requests sent to the market data API",
		RequiredTags: []string{"function", "status"},
	}
)

// Perf
var (
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}

	PerfUpstreamRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_upstream_request",
		Help:         "perf_upstream_request provides duration of market data API request",
		RequiredTags: []string{"function"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfToolCall,
	&PerfUpstreamRequest,
	&StatsToolCallsFailed,
	&StatsToolCallsSucceeded,
	&StatsUpstreamRequests,
}
