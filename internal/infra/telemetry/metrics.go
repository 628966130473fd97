package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics exposes Prometheus collectors for the event-publication
// pipeline: envelopes out, envelopes failed, messages ingested by the sink.
type PipelineMetrics struct {
	EventsPublished  *prometheus.CounterVec
	EventsFailed     *prometheus.CounterVec
	MessagesConsumed *prometheus.CounterVec
	MessagesRejected *prometheus.CounterVec
}

// NewPipelineMetrics constructs and registers the pipeline collectors.
func NewPipelineMetrics(reg prometheus.Registerer) (*PipelineMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Total envelopes delivered to the broker, partitioned by topic.",
	}, []string{"topic"})

	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Subsystem: "events",
		Name:      "failed_total",
		Help:      "Total publish failures partitioned by topic and pipeline stage.",
	}, []string{"topic", "stage"})

	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Subsystem: "sink",
		Name:      "messages_consumed_total",
		Help:      "Total messages successfully handled by the inbound event sink.",
	}, []string{"topic"})

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "booking",
		Subsystem: "sink",
		Name:      "messages_rejected_total",
		Help:      "Total messages the sink could not handle, partitioned by topic.",
	}, []string{"topic"})

	for _, collector := range []prometheus.Collector{published, failed, consumed, rejected} {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, fmt.Errorf("register pipeline collector: %w", err)
		}
	}

	return &PipelineMetrics{
		EventsPublished:  published,
		EventsFailed:     failed,
		MessagesConsumed: consumed,
		MessagesRejected: rejected,
	}, nil
}
