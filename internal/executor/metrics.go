package executor

import "github.com/prometheus/client_golang/prometheus"

var (
	executeBlockDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scw",
		Subsystem: "executor",
		Name:      "execute_block_duration_second",
		Help:      "The total latency of block execute",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
	})

	applyTxsDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scw",
		Subsystem: "executor",
		Name:      "apply_txs_duration_seconds",
		Help:      "The total latency of applying the messages of a block",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 10),
	})

	txCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scw",
		Subsystem: "executor",
		Name:      "tx_counter",
		Help:      "The total number of executed messages",
	}, []string{"status"})

	userOperationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scw",
		Subsystem: "executor",
		Name:      "user_operation_counter",
		Help:      "The total number of user operations seen in committed blocks",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(executeBlockDuration)
	prometheus.MustRegister(applyTxsDuration)
	prometheus.MustRegister(txCounter)
	prometheus.MustRegister(userOperationCounter)
}
