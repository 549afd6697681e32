// Package metrics exposes prometheus instrumentation for wallet operations,
// cache tiers and store queries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	walletOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_operations_total",
		Help: "Wallet operations by operation and outcome.",
	}, []string{"operation", "status"})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_cache_requests_total",
		Help: "Cache lookups by tier and result.",
	}, []string{"tier", "result"})

	cacheFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_cache_failures_total",
		Help: "Degraded cache calls by operation.",
	}, []string{"operation"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_breaker_transitions_total",
		Help: "Circuit breaker state transitions.",
	}, []string{"breaker", "state"})

	dbQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_db_query_duration_seconds",
		Help:    "Store query latency by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

func RecordWalletOperation(operation, status string) {
	walletOperations.WithLabelValues(operation, status).Inc()
}

func RecordCacheRequest(tier, result string) {
	cacheRequests.WithLabelValues(tier, result).Inc()
}

func RecordCacheFailure(operation string) {
	cacheFailures.WithLabelValues(operation).Inc()
}

func RecordBreakerTransition(breaker, state string) {
	breakerTransitions.WithLabelValues(breaker, state).Inc()
}

// ObserveDBQuery times a store call and records its latency regardless of
// outcome.
func ObserveDBQuery(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	dbQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return err
}
