// Package cache provides the tenant-namespaced two-tier cache sitting in
// front of analytics queries: a bounded in-process LRU tier backed by a
// shared embedded badger store with independent TTLs.
//
// There is no per-key locking. Concurrent identical misses each recompute
// and the last write wins, which is acceptable because every cached value is
// an idempotent pure read.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/shoplens/shoplens/internal/metrics"
)

// Config holds cache construction settings.
type Config struct {
	// Dir is the badger directory for the shared tier. Empty means
	// in-memory, which is what tests use.
	Dir string

	// LocalMaxEntries bounds the in-process tier.
	LocalMaxEntries int

	// LocalTTL is the default lifetime of local-tier entries.
	LocalTTL time.Duration

	// SharedTTL is the default lifetime of shared-tier entries.
	SharedTTL time.Duration

	// Logger receives shared-tier degradation warnings. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Stats is a point-in-time snapshot of cache state.
type Stats struct {
	LocalEntries    int    `json:"localEntries"`
	LocalMaxEntries int    `json:"localMaxEntries"`
	LocalHits       uint64 `json:"localHits"`
	SharedHits      uint64 `json:"sharedHits"`
	Misses          uint64 `json:"misses"`
}

// Service is the process-scoped cache object. It is constructed once at
// startup and injected into everything that reads or invalidates analytics.
type Service struct {
	local    *localTier
	shared   *badger.DB
	localTTL time.Duration
	sharedTTL time.Duration
	logger   *slog.Logger

	localHits  atomic.Uint64
	sharedHits atomic.Uint64
	misses     atomic.Uint64
}

// New opens the shared tier and builds the cache service.
func New(cfg Config) (*Service, error) {
	if cfg.LocalMaxEntries <= 0 {
		cfg.LocalMaxEntries = 1000
	}
	if cfg.LocalTTL <= 0 {
		cfg.LocalTTL = 5 * time.Minute
	}
	if cfg.SharedTTL <= 0 {
		cfg.SharedTTL = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open shared cache tier: %w", err)
	}

	return &Service{
		local:     newLocalTier(cfg.LocalMaxEntries),
		shared:    db,
		localTTL:  cfg.LocalTTL,
		sharedTTL: cfg.SharedTTL,
		logger:    cfg.Logger,
	}, nil
}

// Close releases the shared tier.
func (s *Service) Close() error {
	return s.shared.Close()
}

// Get looks up a cached value, checking the local tier first and falling
// back to the shared tier, which backfills the local tier on hit. The
// second return is false when both tiers miss. dest must be a pointer.
func (s *Service) Get(tenantID uuid.UUID, queryType string, params map[string]string, dest any) bool {
	key := Key(tenantID, queryType, params)

	if raw, ok := s.local.get(key); ok {
		if err := json.Unmarshal(raw, dest); err == nil {
			s.localHits.Add(1)
			metrics.CacheHits.WithLabelValues("local").Inc()
			return true
		}
	}

	var raw []byte
	err := s.shared.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			s.logger.Warn("shared cache read failed", "key", key, "error", err)
		}
		s.misses.Add(1)
		metrics.CacheMisses.Inc()
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		s.misses.Add(1)
		metrics.CacheMisses.Inc()
		return false
	}

	// Backfill the local tier for faster subsequent reads.
	s.local.set(key, raw, s.localTTL)
	s.sharedHits.Add(1)
	metrics.CacheHits.WithLabelValues("shared").Inc()
	return true
}

// Set writes a value to both tiers. ttl of zero uses the configured shared
// TTL. A shared-tier failure degrades to local-only and is logged, never
// returned.
func (s *Service) Set(tenantID uuid.UUID, queryType string, params map[string]string, value any, ttl time.Duration) {
	key := Key(tenantID, queryType, params)

	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache value not serializable", "key", key, "error", err)
		return
	}

	if ttl <= 0 {
		ttl = s.sharedTTL
	}

	localTTL := s.localTTL
	if ttl < localTTL {
		localTTL = ttl
	}
	s.local.set(key, raw, localTTL)

	err = s.shared.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		s.logger.Warn("shared cache write failed", "key", key, "error", err)
	}
}

// ClearTenant removes every key in the tenant's namespace from both tiers.
// The shared-tier scan is proportional to total key count, which is fine at
// the key volumes this service holds.
func (s *Service) ClearTenant(tenantID uuid.UUID) {
	prefix := keyPrefix(tenantID)
	s.local.clearPrefix(prefix)

	err := s.shared.DropPrefix([]byte(prefix))
	if err != nil {
		s.logger.Warn("shared cache clear failed", "tenant_id", tenantID, "error", err)
	}
}

// Stats reports entry counts and hit/miss counters.
func (s *Service) Stats() Stats {
	return Stats{
		LocalEntries:    s.local.len(),
		LocalMaxEntries: s.local.maxSize,
		LocalHits:       s.localHits.Load(),
		SharedHits:      s.sharedHits.Load(),
		Misses:          s.misses.Load(),
	}
}
