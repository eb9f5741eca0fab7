package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/chainproof7000-backend/internal/model"
)

var (
	clickhouseOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainproof7000",
		Subsystem: "clickhouse_repository",
		Name:      "operations_total",
		Help:      "Count of repository operations.",
	}, []string{"operation", "network", "status"})

	clickhouseOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainproof7000",
		Subsystem: "clickhouse_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of repository operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "network", "status"})

	clickhouseRowsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainproof7000",
		Subsystem: "clickhouse_repository",
		Name:      "rows_inserted_total",
		Help:      "Count of proof stat rows written.",
	}, []string{"network"})
)

// ClickhouseRepository tracks metrics for ClickHouse repository operations.
type ClickhouseRepository struct{}

// NewClickhouseRepository creates a ClickhouseRepository metrics collector.
func NewClickhouseRepository() *ClickhouseRepository {
	return &ClickhouseRepository{}
}

// ObserveInsert records one stat batch insert and the rows it carried.
func (m ClickhouseRepository) ObserveInsert(network model.Network, rows int, err error, started time.Time) {
	m.observe("insert_proof_stats", network, err, started)
	if err == nil {
		clickhouseRowsInserted.WithLabelValues(networkLabel(network)).Add(float64(rows))
	}
}

// ObserveQuery records the outcome and duration of a read.
func (m ClickhouseRepository) ObserveQuery(operation string, network model.Network, err error, started time.Time) {
	m.observe(operation, network, err, started)
}

func (m ClickhouseRepository) observe(operation string, network model.Network, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	clickhouseOperationsTotal.WithLabelValues(operation, networkLabel(network), status).Inc()
	clickhouseOperationDuration.WithLabelValues(operation, networkLabel(network), status).Observe(time.Since(started).Seconds())
}

func networkLabel(network model.Network) string {
	if network == "" {
		return "unknown"
	}
	return string(network)
}
