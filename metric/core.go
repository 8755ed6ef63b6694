package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not component-specific)
type Metrics struct {
	// Component lifecycle metrics
	ComponentStatus *prometheus.GaugeVec

	// Event pipeline metrics
	EventsIngested         *prometheus.CounterVec
	RoundsReachedConsensus prometheus.Counter
	RoundsHandled          prometheus.Counter
	StaleRounds            prometheus.Counter

	// Coordinator metrics
	PipelineClears prometheus.Counter
	IntakeFlushes  prometheus.Counter

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ComponentStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "platform",
				Subsystem: "component",
				Name:      "status",
				Help:      "Component status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"component"},
		),

		EventsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "intake",
				Name:      "events_ingested_total",
				Help:      "Total number of events entering the intake pipeline",
			},
			[]string{"source"},
		),

		RoundsReachedConsensus: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "consensus",
				Name:      "rounds_total",
				Help:      "Total number of rounds that reached consensus",
			},
		),

		RoundsHandled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "consensus",
				Name:      "rounds_handled_total",
				Help:      "Total number of durable rounds applied by the round handler",
			},
		),

		StaleRounds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "consensus",
				Name:      "stale_rounds_total",
				Help:      "Rounds waiting on keystone durability past the stale threshold",
			},
		),

		PipelineClears: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "coordinator",
				Name:      "clears_total",
				Help:      "Total number of pipeline clear operations",
			},
		),

		IntakeFlushes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "coordinator",
				Name:      "intake_flushes_total",
				Help:      "Total number of intake pipeline flushes",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "platform",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "class"},
		),
	}
}
