// internal/service/item/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stockUpdateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "itemservice",
		Name:      "stock_update_total",
		Help:      "Stock update attempts by mode and terminal status.",
	}, []string{"mode", "status"})

	stockUpdateReplayTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "itemservice",
		Name:      "stock_update_replay_total",
		Help:      "Duplicate requests resolved by idempotent replay.",
	})

	lockWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "itemservice",
		Name:      "stock_lock_wait_seconds",
		Help:      "Time spent waiting for the per-item lease.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	lockTimeoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "itemservice",
		Name:      "stock_lock_timeout_total",
		Help:      "Lease acquisitions that timed out.",
	})
)
