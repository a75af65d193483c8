// In file: internal/agent/metrics.go
package agent

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "agent"

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "queries_total",
		Help:      "Queries answered, by routing verdict.",
	}, []string{"verdict"})

	toolInvocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "tool_invocations_total",
		Help:      "Underlying tool executions, by tool and outcome.",
	}, []string{"tool", "outcome"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "cache_lookups_total",
		Help:      "Result cache lookups, by hit or miss.",
	}, []string{"result"})

	reasoningIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "reasoning_iterations",
		Help:      "Iterations used by the multi-tool reasoning loop.",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})

	answerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "answer_duration_seconds",
		Help:      "End-to-end time to answer a query, by provenance kind.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source"})
)

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

// sourceLabel maps a response's provenance to a bounded label value. A chained
// answer's Source carries the model's tool-order text, so it collapses to one value.
func sourceLabel(resp Response) string {
	if strings.HasPrefix(resp.Source, chainPrefix) {
		return strings.TrimSuffix(chainPrefix, ": ")
	}
	return resp.Source
}
