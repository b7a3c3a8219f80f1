package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scanner, credit engine and surface metrics, partitioned by network where
// the value is per-ledger.

var (
	// Scanner
	ScanCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "cycles_total",
		Help:      "Total scan cycles by result (ok, error, skipped)",
	}, []string{"network", "result"})

	ScanCycleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "cycle_duration_seconds",
		Help:      "Scan cycle duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"network"})

	ScanPagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "pages_fetched_total",
		Help:      "Total ledger query pages fetched",
	}, []string{"network"})

	ScanTransactionsSeen = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "transactions_seen_total",
		Help:      "Total ledger transactions inspected by the classifier",
	}, []string{"network"})

	ScanTransfersRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "transfers_recorded_total",
		Help:      "Total new qualifying transfers persisted",
	}, []string{"network", "source"})

	ScanIgnoredTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "ignored_transactions_total",
		Help:      "Total transactions rejected by the classifier",
	}, []string{"network", "reason"})

	// Cursor
	CursorCheckpoint = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "cursor",
		Name:      "checkpoint",
		Help:      "Highest checkpoint covered by the sync cursor",
	}, []string{"network"})

	CursorConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "cursor",
		Name:      "conflicts_total",
		Help:      "Total cursor advances rejected by the version check",
	}, []string{"network"})

	// Credit engine
	CreditDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "credit",
		Name:      "decisions_total",
		Help:      "Total credit engine decisions by outcome",
	}, []string{"outcome"})

	SpinsCreditedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "credit",
		Name:      "spins_credited_total",
		Help:      "Total spins issued, by issuing path (auto, admin, claim)",
	}, []string{"path"})

	CreditResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "credit",
		Name:      "resolutions_total",
		Help:      "Total administrator and player resolutions by action and result",
	}, []string{"action", "result"})

	CreditEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "credit",
		Name:      "events_published_total",
		Help:      "Total credit events written to the notification stream",
	}, []string{"result"})

	// Scan lock
	ScanLockAcquisitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scan_lock",
		Name:      "acquisitions_total",
		Help:      "Total scan lock attempts by result (acquired, held, error)",
	}, []string{"backend", "result"})

	// Database pool
	DBPoolOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_open",
		Help:      "Open connections in the database pool",
	}, []string{"pool"})

	DBPoolInUse = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_in_use",
		Help:      "Connections currently in use",
	}, []string{"pool"})

	DBPoolIdle = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_idle",
		Help:      "Idle connections in the database pool",
	}, []string{"pool"})

	DBPoolWaitCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_wait_count",
		Help:      "Total number of connections waited for",
	}, []string{"pool"})

	DBPoolWaitDurationSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_wait_duration_seconds",
		Help:      "Total time blocked waiting for a new connection",
	}, []string{"pool"})

	// Address cache
	AccountCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "cache",
		Name:      "account_address_hits_total",
		Help:      "Sender address lookups served from the cache",
	})

	AccountCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "cache",
		Name:      "account_address_misses_total",
		Help:      "Sender address lookups that went to the database",
	})

	// RPC
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total ledger RPC calls by method and status class",
	}, []string{"method", "status"})

	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Total RPC calls delayed by the client-side rate limiter",
	}, []string{"method"})

	RPCCircuitState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "circuit_state",
		Help:      "Ledger RPC circuit breaker state (0=closed, 1=open, 2=half-open)",
	})

	// Pipeline health
	PipelineHealthStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "pipeline",
		Name:      "health_status",
		Help:      "Scanner health status (0=UNKNOWN, 1=HEALTHY, 2=UNHEALTHY)",
	}, []string{"network"})

	PipelineConsecutiveFailures = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "pipeline",
		Name:      "consecutive_failures",
		Help:      "Number of consecutive failed scan cycles",
	}, []string{"network"})

	// HTTP surfaces
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total admin and player API requests",
	}, []string{"server", "method", "code"})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts sent",
	}, []string{"channel", "alert_type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts skipped due to cooldown",
	}, []string{"channel", "alert_type"})

	// Ledger reconciliation
	ReconciliationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "reconciliation",
		Name:      "runs_total",
		Help:      "Total ledger reconciliation runs by result",
	}, []string{"result"})

	ReconciliationFindings = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "reconciliation",
		Name:      "findings",
		Help:      "Discrepancies found by the latest reconciliation run, by kind",
	}, []string{"kind"})
)
