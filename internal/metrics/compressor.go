package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
)

var (
	compressorStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainproof7000",
		Subsystem: "compressor",
		Name:      "steps_total",
		Help:      "Count of compression steps.",
	}, []string{"network", "status"})

	compressorStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainproof7000",
		Subsystem: "compressor",
		Name:      "step_duration_seconds",
		Help:      "Duration of one fetch-append-compress step.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	compressorStepSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainproof7000",
		Subsystem: "compressor",
		Name:      "step_size",
		Help:      "Number of blocks folded in per compression step.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16), // 1..32768
	}, []string{"network"})

	compressorProofLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chainproof7000",
		Subsystem: "compressor",
		Name:      "proof_length",
		Help:      "Blocks held by the current proof.",
	}, []string{"network"})

	compressorProofLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chainproof7000",
		Subsystem: "compressor",
		Name:      "proof_level",
		Help:      "Level the current proof is anchored on.",
	}, []string{"network"})

	compressorChainHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chainproof7000",
		Subsystem: "compressor",
		Name:      "chain_height",
		Help:      "Highest block height folded into the proof.",
	}, []string{"network"})
)

// Compressor tracks metrics for the proof compression pipeline.
type Compressor struct {
	network model.Network
}

// NewCompressor constructs a Compressor metrics collector.
func NewCompressor(network model.Network) *Compressor {
	if network == "" {
		network = "unknown"
	}
	return &Compressor{network: network}
}

// ObserveStep records one fetch-append-compress step.
func (m Compressor) ObserveStep(err error, blocks int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	compressorStepsTotal.WithLabelValues(string(m.network), status).Inc()
	compressorStepDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	compressorStepSize.WithLabelValues(string(m.network)).Observe(float64(blocks))
}

// SetProofShape publishes the current proof dimensions.
func (m Compressor) SetProofShape(height uint64, length, level int) {
	compressorChainHeight.WithLabelValues(string(m.network)).Set(float64(height))
	compressorProofLength.WithLabelValues(string(m.network)).Set(float64(length))
	compressorProofLevel.WithLabelValues(string(m.network)).Set(float64(level))
}
