// Package metrics defines the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts cache hits per tier ("local" or "shared").
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoplens_cache_hits_total",
		Help: "Cache hits by tier.",
	}, []string{"tier"})

	// CacheMisses counts lookups that missed both tiers.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shoplens_cache_misses_total",
		Help: "Cache lookups that missed both tiers.",
	})

	// SyncRecords counts per-record sync outcomes by entity and result
	// ("synced" or "failed").
	SyncRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoplens_sync_records_total",
		Help: "Synced records by entity type and result.",
	}, []string{"entity", "result"})

	// WebhookEvents counts received webhook deliveries by topic group.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shoplens_webhook_events_total",
		Help: "Webhook deliveries by topic group.",
	}, []string{"topic"})
)
