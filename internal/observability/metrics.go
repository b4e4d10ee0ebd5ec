package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	instructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cpitransfer",
			Subsystem: "runtime",
			Name:      "instructions_total",
			Help:      "Top-level instructions executed by the runtime.",
		},
		[]string{"program", "status"},
	)
	instructionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cpitransfer",
			Subsystem: "runtime",
			Name:      "instruction_duration_seconds",
			Help:      "Top-level instruction execution time in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"program", "status"},
	)
	invocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cpitransfer",
			Subsystem: "runtime",
			Name:      "invocations_total",
			Help:      "Cross-program invocations issued by running programs.",
		},
		[]string{"caller", "callee", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(instructions, instructionDuration, invocations)
	})
}

func RecordInstruction(program, status string, duration time.Duration) {
	RegisterMetrics()
	instructions.WithLabelValues(program, status).Inc()
	instructionDuration.WithLabelValues(program, status).Observe(duration.Seconds())
}

func RecordInvocation(caller, callee, status string) {
	RegisterMetrics()
	invocations.WithLabelValues(caller, callee, status).Inc()
}
