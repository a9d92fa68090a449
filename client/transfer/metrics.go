package transfer

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the transfers that were assembled by an Assembler.
type Metrics struct {
	assembled *prometheus.CounterVec
	failed    *prometheus.CounterVec
	inputs    prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with the given registerer (if not nil).
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		assembled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xfr_transfers_assembled_total",
			Help: "number of transfer operations that were assembled and signed",
		}, []string{
			"record_type",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xfr_transfers_failed_total",
			Help: "number of transfer operations that could not be assembled",
		}, []string{
			"reason",
		}),
		inputs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "xfr_transfer_inputs",
			Help:    "number of inputs that were selected for a transfer",
			Buckets: prometheus.LinearBuckets(1, 2, 8),
		}),
	}

	if registerer == nil {
		return metrics, nil
	}

	for _, collector := range []prometheus.Collector{metrics.assembled, metrics.failed, metrics.inputs} {
		if err := registerer.Register(collector); err != nil {
			return nil, errors.Wrap(err, "failed to register transfer metrics")
		}
	}

	return metrics, nil
}

func (m *Metrics) onAssembled(recordType string, inputCount int) {
	m.assembled.WithLabelValues(recordType).Inc()
	m.inputs.Observe(float64(inputCount))
}

func (m *Metrics) onFailed(reason string) {
	m.failed.WithLabelValues(reason).Inc()
}
