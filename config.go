// config.go: cache configuration
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

import (
	"context"
	"time"

	"github.com/agilira/go-timecache"

	"github.com/ashgrove-cache/tinylfu/internal/cerr"
	"github.com/ashgrove-cache/tinylfu/internal/policy"
)

// Default values applied by Config.Validate when the caller leaves the
// corresponding field at its zero value.
const (
	DefaultMaxSize             = 10000
	DefaultWindowRatio         = 0.01
	DefaultMaintenanceInterval = time.Second
	DefaultConcurrencyLevel    = 16
)

// Weigher computes the weight of a key/value pair. Required whenever
// MaximumWeight is non-zero; ignored otherwise (every entry then counts as
// weight 1 against MaxSize).
type Weigher[K comparable, V any] func(key K, value V) uint32

// Loader computes a value for a key on a cache miss, for synchronous
// GetOrLoad.
type Loader[K comparable, V any] func(key K) (V, error)

// AsyncLoader computes a value for a key on a cache miss, for
// context-aware GetOrLoad, honoring cancellation/deadlines.
type AsyncLoader[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Config bundles every construction-time option for Cache[K, V]. MaxSize
// has no default: Validate fills every other optional field but rejects a
// zero MaxSize. DefaultConfig returns a validated Config with MaxSize set to
// DefaultMaxSize.
type Config[K comparable, V any] struct {
	// MaxSize bounds the number of entries; when MaximumWeight is set it
	// still applies as an entry-count bound alongside the weight bound.
	// Must be > 0: Validate rejects zero and negative values.
	MaxSize int

	// MaximumWeight, if non-zero, bounds the sum of Weigher(key, value)
	// across all live entries instead of raw entry count. Requires Weigher.
	MaximumWeight uint64

	// Weigher computes per-entry weight. Required iff MaximumWeight != 0.
	Weigher Weigher[K, V]

	// ExpireAfterWrite evicts an entry once this long has elapsed since its
	// most recent Put. Zero disables write-based expiry.
	ExpireAfterWrite time.Duration

	// ExpireAfterAccess evicts an entry once this long has elapsed since its
	// most recent Get/Put. Zero disables access-based expiry. When both are
	// set, Validate rejects an ExpireAfterAccess shorter than
	// ExpireAfterWrite (conflicting expiry).
	ExpireAfterAccess time.Duration

	// RefreshAfterWrite schedules an async reload of an entry this long
	// after its Put; the first maintenance tick past that deadline starts
	// the reload in the background while reads keep serving the current
	// value. Zero disables refresh-ahead. Requires Loader or AsyncLoader.
	RefreshAfterWrite time.Duration

	// Loader backs synchronous GetOrLoad and refresh-ahead, if set.
	Loader Loader[K, V]

	// AsyncLoader backs context-aware GetOrLoad and refresh-ahead, if set.
	// If both Loader and AsyncLoader are set, GetOrLoadWithContext prefers
	// AsyncLoader and GetOrLoad prefers Loader.
	AsyncLoader AsyncLoader[K, V]

	// EvictionPolicy selects the admission/eviction algorithm. Defaults to
	// WindowTinyLFU.
	EvictionPolicy policy.Variant

	// WindowRatio is the fraction of MaxSize dedicated to the admission
	// window region, used only when EvictionPolicy is WindowTinyLFU. Must
	// lie in (0, 1); defaults to DefaultWindowRatio.
	WindowRatio float64

	// IdleThreshold is the minimum time since last access before an entry
	// becomes eligible for eviction under the IdleTime policy. Ignored by
	// every other EvictionPolicy. Zero makes any idle entry eligible.
	IdleThreshold time.Duration

	// InitialCapacity is accepted as a sizing hint but is not read by New;
	// internal maps grow on demand regardless of its value.
	InitialCapacity int

	// ConcurrencyLevel sizes the store's shard count (rounded up to the
	// next power of two) and caps the striped ring buffer's stripe count,
	// which starts at one and doubles under contention. Defaults to
	// DefaultConcurrencyLevel.
	ConcurrencyLevel int

	// RecordStats enables the internal/stats.Recorder; if false, a no-op
	// recorder is used and Stats() reports zero for every counter, while
	// Size and Capacity are still filled in.
	RecordStats bool

	// Listeners receive OnPut/OnRemove/OnLoad notifications. Evaluated in
	// order; a panicking listener is recovered and logged, never fatal.
	Listeners []CacheEventListener[K, V]

	// MaintenanceInterval is the steady-state period of the background
	// maintenance goroutine (drain, sketch aging, expiry sweep, refresh
	// firing). Defaults to DefaultMaintenanceInterval. Hot-reloadable.
	MaintenanceInterval time.Duration

	// ReadOnly rejects Put, Remove and GetOrLoad, leaving
	// Get/ContainsKey/Stats available. GetOrLoad returns an ErrCodeReadOnly
	// error; Put and Remove have no error return, so they log the rejection
	// and report no prior value. Intended for a cache handed
	// out to components that must not mutate it.
	ReadOnly bool

	// Logger receives structural diagnostics (maintenance errors, recovered
	// panics). Defaults to NoOpLogger.
	Logger Logger

	// TimeProvider supplies the cache's notion of "now". Defaults to a
	// provider backed by github.com/agilira/go-timecache's cached clock.
	TimeProvider TimeProvider

	// MetricsCollector receives per-operation latency measurements.
	// Defaults to NoOpMetricsCollector.
	MetricsCollector MetricsCollector
}

// DefaultConfig returns a Config with MaxSize set and every optional field
// defaulted, ready to pass to New.
func DefaultConfig[K comparable, V any]() Config[K, V] {
	cfg := Config[K, V]{MaxSize: DefaultMaxSize}
	_ = cfg.Validate()
	return cfg
}

// Validate normalizes optional fields to their defaults in place and
// returns an error for settings that cannot be reconciled automatically: a
// non-positive MaxSize, MaximumWeight without a Weigher, or both expiry
// durations set with ExpireAfterAccess shorter than ExpireAfterWrite.
func (c *Config[K, V]) Validate() error {
	if c.MaxSize <= 0 {
		return cerr.InvalidMaxSize(c.MaxSize)
	}
	if c.MaximumWeight != 0 && c.Weigher == nil {
		return cerr.MissingWeigher()
	}
	if c.ExpireAfterWrite > 0 && c.ExpireAfterAccess > 0 && c.ExpireAfterAccess < c.ExpireAfterWrite {
		return cerr.ConflictingExpiry("expire_after_access is shorter than expire_after_write")
	}

	if c.WindowRatio <= 0 || c.WindowRatio >= 1 {
		c.WindowRatio = DefaultWindowRatio
	}
	if c.ConcurrencyLevel <= 0 {
		c.ConcurrencyLevel = DefaultConcurrencyLevel
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = DefaultMaintenanceInterval
	}
	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = systemTimeProvider{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}
	return nil
}

// systemTimeProvider is the default TimeProvider, backed by go-timecache's
// periodically-refreshed clock so Now() avoids a syscall per call.
type systemTimeProvider struct{}

func (systemTimeProvider) Now() int64 { return timecache.CachedTimeNano() }
