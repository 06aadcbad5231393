package ledger

import "github.com/prometheus/client_golang/prometheus"

const (
	metricsNamespace = "scw"
	metricsSubsystem = "ledger"
)

func newLedgerHistogram(name, help string, start float64) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.ExponentialBuckets(start, 2, 10),
	})
}

var (
	commitDuration       = newLedgerHistogram("commit_duration_second", "Latency of a state commit", 0.0001)
	accountReadDuration  = newLedgerHistogram("account_read_duration", "Latency of reading an account from kv", 0.00001)
	persistBlockDuration = newLedgerHistogram("persist_block_duration_second", "Latency of persisting a block", 0.0001)

	accountCacheHitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "account_cache_hit_counter",
		Help:      "Account reads served by the lru cache",
	})

	accountCacheMissCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "account_cache_miss_counter",
		Help:      "Account reads that went to kv",
	})

	blockHeightMetric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "block_height",
		Help:      "Height of the last persisted block",
	})

	dirtyAccountCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "dirty_account_counter",
		Help:      "Accounts written by the last commit",
	})
)

func init() {
	prometheus.MustRegister(
		commitDuration,
		accountReadDuration,
		persistBlockDuration,
		accountCacheHitCounter,
		accountCacheMissCounter,
		blockHeightMetric,
		dirtyAccountCounter,
	)
}
