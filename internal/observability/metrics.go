package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "haproxyadmin",
			Subsystem: "runtime_api",
			Name:      "commands_total",
			Help:      "Runtime API commands by outcome.",
		},
		[]string{"status"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "haproxyadmin",
			Subsystem: "runtime_api",
			Name:      "command_duration_seconds",
			Help:      "Runtime API command round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	reconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "haproxyadmin",
			Subsystem: "session",
			Name:      "reconnects_total",
			Help:      "Transparent reconnects after a dead liveness probe.",
		},
	)
	probeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "haproxyadmin",
			Subsystem: "session",
			Name:      "probe_failures_total",
			Help:      "Liveness probes that found a dead connection.",
		},
	)
)

// RegisterMetrics registers the package collectors once per process.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commands, commandDuration, reconnects, probeFailures)
	})
}

// RecordCommand tracks one command round trip by outcome.
func RecordCommand(status string, duration time.Duration) {
	commands.WithLabelValues(status).Inc()
	commandDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordReconnect tracks one transparent reconnect.
func RecordReconnect() {
	reconnects.Inc()
}

// RecordProbeFailure tracks one liveness probe that found a dead peer.
func RecordProbeFailure() {
	probeFailures.Inc()
}
