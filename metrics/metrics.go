// Package metrics exposes Prometheus counters for chat and tool activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ChatTurnsTotal      *prometheus.CounterVec
	ProviderRequests    *prometheus.CounterVec
	ProviderLatency     prometheus.Histogram
	ToolExecutionsTotal *prometheus.CounterVec
	TurnBudgetExhausted prometheus.Counter

	registry *prometheus.Registry
}

// New builds the metric set on a private registry so tests can construct
// any number of instances without duplicate-registration panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		ChatTurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetingbot_chat_turns_total",
				Help: "Completed chat turns by outcome",
			},
			[]string{"outcome"},
		),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetingbot_provider_requests_total",
				Help: "LLM completion requests by status",
			},
			[]string{"status"},
		),
		ProviderLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "meetingbot_provider_request_duration_seconds",
				Help:    "LLM completion request latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetingbot_tool_executions_total",
				Help: "Tool executions by tool name and status",
			},
			[]string{"tool", "status"},
		),
		TurnBudgetExhausted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "meetingbot_turn_budget_exhausted_total",
				Help: "Turns that hit the tool-call budget before a final answer",
			},
		),
		registry: reg,
	}
	reg.MustRegister(m.ChatTurnsTotal, m.ProviderRequests, m.ProviderLatency, m.ToolExecutionsTotal, m.TurnBudgetExhausted)
	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordProviderRequest(status string, duration time.Duration) {
	m.ProviderRequests.WithLabelValues(status).Inc()
	m.ProviderLatency.Observe(duration.Seconds())
}

func (m *Metrics) RecordToolExecution(toolName string, isError bool) {
	status := "ok"
	if isError {
		status = "error"
	}
	m.ToolExecutionsTotal.WithLabelValues(toolName, status).Inc()
}

func (m *Metrics) RecordChatTurn(outcome string) {
	m.ChatTurnsTotal.WithLabelValues(outcome).Inc()
}
