package klf200

import "github.com/prometheus/client_golang/prometheus"

// metricsRecorder is the small set of gauges/counters an Engine updates as
// it runs. Ambient instrumentation, not a spec'd feature (see SPEC_FULL.md
// DOMAIN STACK) — an Engine built with nil metrics uses noopMetrics and pays
// no cost for the unused labels.
type metricsRecorder struct {
	framesSent         prometheus.Counter
	framesReceived     prometheus.Counter
	checksumMismatches prometheus.Counter
	requestsInFlight   prometheus.Gauge
	sessionTableSize   prometheus.Gauge
}

var noopMetrics = &metricsRecorder{
	framesSent:         prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_frames_sent"}),
	framesReceived:     prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_frames_received"}),
	checksumMismatches: prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_checksum_mismatches"}),
	requestsInFlight:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "noop_requests_in_flight"}),
	sessionTableSize:   prometheus.NewGauge(prometheus.GaugeOpts{Name: "noop_session_table_size"}),
}

// NewMetricsRecorder registers the engine's metrics against reg and returns
// a recorder an Engine can be constructed with. Callers that don't want
// metrics registered pass nil to NewEngine instead of calling this.
func NewMetricsRecorder(reg prometheus.Registerer) *metricsRecorder {
	m := &metricsRecorder{
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "velux",
			Name:      "frames_sent_total",
			Help:      "Wire frames written to the gateway.",
		}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "velux",
			Name:      "frames_received_total",
			Help:      "Wire frames read from the gateway.",
		}),
		checksumMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "velux",
			Name:      "checksum_mismatches_total",
			Help:      "Frames whose trailing XOR checksum did not match.",
		}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "velux",
			Name:      "requests_in_flight",
			Help:      "Requests currently in the pipeline, awaiting a confirmation or stream completion.",
		}),
		sessionTableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "velux",
			Name:      "session_table_size",
			Help:      "Live entries in the session table.",
		}),
	}
	reg.MustRegister(m.framesSent, m.framesReceived, m.checksumMismatches, m.requestsInFlight, m.sessionTableSize)
	return m
}
