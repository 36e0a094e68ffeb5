package server

import (
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/njchilds90/qforms"
)

type metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	known    []string
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qforms",
			Name:      "tool_calls_total",
			Help:      "Tool calls by tool and outcome.",
		}, []string{"tool", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qforms",
			Name:      "tool_duration_seconds",
			Help:      "Tool call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"tool"}),
		known: qforms.ToolNames(),
	}
	m.registry.MustRegister(
		m.calls,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// label keeps client-supplied tool names out of the label space.
func (m *metrics) label(tool string) string {
	if slices.Contains(m.known, tool) {
		return tool
	}
	return "unknown"
}

func (m *metrics) observe(tool string, failed bool, seconds float64) {
	tool = m.label(tool)
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.calls.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(seconds)
}
