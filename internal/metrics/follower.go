package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
)

var (
	followerPollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainproof7000",
		Subsystem: "follower",
		Name:      "poll_total",
		Help:      "Count of tip polls against the header source.",
	}, []string{"network", "status"})

	followerPollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainproof7000",
		Subsystem: "follower",
		Name:      "poll_duration_seconds",
		Help:      "Duration of tip polls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	followerExtendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainproof7000",
		Subsystem: "follower",
		Name:      "extend_total",
		Help:      "Count of proof extensions with freshly fetched headers.",
	}, []string{"network", "status"})

	followerExtendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainproof7000",
		Subsystem: "follower",
		Name:      "extend_duration_seconds",
		Help:      "Duration of proof extensions.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	followerExtendSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainproof7000",
		Subsystem: "follower",
		Name:      "extend_size",
		Help:      "Number of blocks appended per extension.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	}, []string{"network"})
)

// Follower tracks metrics for the proof follower pipeline.
type Follower struct {
	network model.Network
}

// NewFollower constructs a Follower metrics collector.
func NewFollower(network model.Network) *Follower {
	if network == "" {
		network = "unknown"
	}
	return &Follower{network: network}
}

// ObservePoll records a tip poll outcome and duration.
func (m Follower) ObservePoll(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	followerPollTotal.WithLabelValues(string(m.network), status).Inc()
	followerPollDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
}

// ObserveExtend records an extension outcome, size and duration.
func (m Follower) ObserveExtend(err error, blocks int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	followerExtendTotal.WithLabelValues(string(m.network), status).Inc()
	followerExtendDuration.WithLabelValues(string(m.network), status).
		Observe(time.Since(started).Seconds())
	followerExtendSize.WithLabelValues(string(m.network)).Observe(float64(blocks))
}
