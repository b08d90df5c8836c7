// cache.go: core Window-TinyLFU cache implementation
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

import (
	"context"
	"sync"
	"time"

	uberatomic "go.uber.org/atomic"

	"github.com/ashgrove-cache/tinylfu/internal/expiry"
	"github.com/ashgrove-cache/tinylfu/internal/loadgroup"
	"github.com/ashgrove-cache/tinylfu/internal/maintenance"
	"github.com/ashgrove-cache/tinylfu/internal/policy"
	"github.com/ashgrove-cache/tinylfu/internal/refresh"
	"github.com/ashgrove-cache/tinylfu/internal/ring"
	"github.com/ashgrove-cache/tinylfu/internal/sketch"
	"github.com/ashgrove-cache/tinylfu/internal/stats"
	"github.com/ashgrove-cache/tinylfu/internal/store"
)

// accessEvent is what a read posts to the striped ring buffer; the
// maintenance goroutine later replays it against the policy. hash is
// carried alongside key so the drain side never has to recompute it.
type accessEvent[K comparable] struct {
	key  K
	hash uint64
}

// Cache is a generic, concurrent, in-memory cache with Window-TinyLFU
// admission by default. The zero value is not usable; construct one with
// New.
type Cache[K comparable, V any] struct {
	cfg Config[K, V]

	store     *store.Store[K, V]
	sketch    *sketch.Frequency
	events    *ring.Striped[accessEvent[K]]
	statsRec  stats.Recorder
	loads     *loadgroup.Coordinator[V]
	schedule  *refresh.Scheduler[K]
	runner    *maintenance.Runner

	// policyMu guards every call into pol. Put evicts synchronously under
	// this lock so a caller observes a restored size/weight invariant
	// before Put returns; the maintenance goroutine takes the same lock to
	// apply drained access events (Touch) and to drop swept expired entries
	// (Remove); it never selects eviction victims. This is a deliberate,
	// documented narrowing of "the policy is updated only by the
	// maintenance task": writes need synchronous eviction, reads do not.
	policyMu sync.Mutex
	pol      policy.Policy[K]

	expireAfterWrite  uberatomic.Int64
	expireAfterAccess uberatomic.Int64
	refreshAfterWrite uberatomic.Int64

	currentWeight uberatomic.Uint64
	maxWeight     uint64
	weighted      bool

	versionSeq uberatomic.Uint64

	closeOnce sync.Once
	closed    uberatomic.Bool
	cancel    context.CancelFunc
}

// New constructs a Cache from cfg, validating and defaulting it first, and
// starts its background maintenance goroutine. Call Close when the cache is
// no longer needed to stop that goroutine.
func New[K comparable, V any](cfg Config[K, V]) (*Cache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sk := sketch.New(cfg.MaxSize * defaultSketchMultiplier)

	c := &Cache[K, V]{
		cfg:      cfg,
		store:    store.New[K, V](cfg.ConcurrencyLevel),
		sketch:   sk,
		events:   ring.NewStriped[accessEvent[K]](defaultRingBufferCapacity, cfg.ConcurrencyLevel),
		loads:    loadgroup.New[V](),
		schedule: refresh.New[K](),
		pol:       newPolicy[K](cfg, sk),
		maxWeight: cfg.MaximumWeight,
		weighted:  cfg.MaximumWeight > 0,
	}
	c.expireAfterWrite.Store(int64(cfg.ExpireAfterWrite))
	c.expireAfterAccess.Store(int64(cfg.ExpireAfterAccess))
	c.refreshAfterWrite.Store(int64(cfg.RefreshAfterWrite))
	if cfg.RecordStats {
		c.statsRec = stats.New()
	} else {
		c.statsRec = stats.NewNoop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.runner = maintenance.New(cfg.TimeProvider, maintenance.Tasks{
		DrainEvents:  c.drainEvents,
		AgeSketch:    c.sketch.Age,
		SweepExpired: c.sweepExpired,
		FireRefresh:  c.fireRefresh,
	}, cfg.MaintenanceInterval)
	go c.runner.Run(ctx)

	return c, nil
}

func newPolicy[K comparable, V any](cfg Config[K, V], sk *sketch.Frequency) policy.Policy[K] {
	switch cfg.EvictionPolicy {
	case policy.LRU:
		return policy.NewLRU[K]()
	case policy.FIFO:
		return policy.NewFIFO[K]()
	case policy.FILO:
		return policy.NewFILO[K]()
	case policy.LFU:
		return policy.NewLFU[K]()
	case policy.WeightBased:
		return policy.NewWeightBased[K]()
	case policy.IdleTime:
		return policy.NewIdleTime[K](int64(cfg.IdleThreshold))
	default:
		return policy.NewWindowTinyLFU[K](cfg.MaxSize, cfg.WindowRatio, sk)
	}
}

func (c *Cache[K, V]) now() int64 { return c.cfg.TimeProvider.Now() }

func (c *Cache[K, V]) expiryPolicy() expiry.Policy {
	return expiry.Policy{
		AfterWrite:  c.expireAfterWrite.Load(),
		AfterAccess: c.expireAfterAccess.Load(),
	}
}

// SetExpireAfterWrite changes the write-based expiry duration live. Zero
// disables it. Hot-reloadable, unlike MaxSize or WindowRatio.
func (c *Cache[K, V]) SetExpireAfterWrite(d time.Duration) {
	c.expireAfterWrite.Store(int64(d))
}

// SetExpireAfterAccess changes the access-based expiry duration live.
func (c *Cache[K, V]) SetExpireAfterAccess(d time.Duration) {
	c.expireAfterAccess.Store(int64(d))
}

// SetRefreshAfterWrite changes the refresh-ahead horizon live. Takes effect
// for puts made after the call; schedules already posted keep their
// original deadline.
func (c *Cache[K, V]) SetRefreshAfterWrite(d time.Duration) {
	c.refreshAfterWrite.Store(int64(d))
}

// SetMaintenanceInterval changes the background maintenance tick period
// live.
func (c *Cache[K, V]) SetMaintenanceInterval(d time.Duration) {
	c.runner.SetInterval(d)
}

// Get looks up key, recording the access for the eviction policy and for
// stats. A hit does not block on the policy; the access is only posted to a
// ring buffer for the maintenance goroutine to apply later.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	hash := hashKey(key)
	start := c.now()
	entry, ok := c.store.Get(key, hash, start, c.expiryCheck)
	if !ok {
		c.statsRec.RecordMiss()
		c.cfg.MetricsCollector.RecordGet(c.now()-start, false)
		var zero V
		return zero, false
	}
	entry.AccessNanos = start
	c.events.Record(accessEvent[K]{key: key, hash: hash})
	c.statsRec.RecordHit()
	c.cfg.MetricsCollector.RecordGet(c.now()-start, true)
	return entry.Value, true
}

// GetIfPresent is Get without ever invoking a loader; identical to Get for
// this cache, since Get never loads either — kept as a distinct name to
// match callers that want to make "no loader" explicit at the call site.
func (c *Cache[K, V]) GetIfPresent(key K) (V, bool) {
	return c.Get(key)
}

// ContainsKey reports whether key currently maps to a live entry, without
// recording a hit/miss or posting an access event.
func (c *Cache[K, V]) ContainsKey(key K) bool {
	hash := hashKey(key)
	_, ok := c.store.Get(key, hash, c.now(), c.expiryCheck)
	return ok
}

// Put inserts or replaces key's value, evicting if necessary to restore the
// configured size or weight bound, and returns the prior value if any.
func (c *Cache[K, V]) Put(key K, value V) (V, bool) {
	var zero V
	if c.closed.Load() {
		c.cfg.Logger.Error("put called after close", "key", formatKey(key))
		return zero, false
	}
	if c.cfg.ReadOnly {
		c.cfg.Logger.Error("put rejected: cache is read-only", "key", formatKey(key))
		return zero, false
	}

	hash := hashKey(key)
	now := c.now()
	weight := c.weightOf(key, value)

	newEntry := &store.Entry[V]{
		Value:        value,
		Weight:       weight,
		CreatedNanos: now,
		AccessNanos:  now,
		Version:      c.versionSeq.Inc(),
	}

	prior, hadPrior := c.store.Remove(key, hash)
	c.store.Put(key, hash, newEntry)

	if hadPrior && c.weighted {
		c.currentWeight.Sub(uint64(prior.Weight))
	}
	if c.weighted {
		c.currentWeight.Add(uint64(weight))
	}

	c.policyMu.Lock()
	if hadPrior {
		c.pol.Remove(key)
	}
	c.pol.Add(key, hash, weight, now)
	c.evictLocked(now)
	c.policyMu.Unlock()

	if refresh := c.refreshAfterWrite.Load(); refresh > 0 && (c.cfg.Loader != nil || c.cfg.AsyncLoader != nil) {
		c.schedule.Schedule(key, hash, now+refresh, newEntry.Version)
	}

	c.cfg.MetricsCollector.RecordPut(c.now() - now)
	if hadPrior {
		c.dispatchOnRemove(key, prior.Value, CauseReplaced)
	}
	c.dispatchOnPut(key, value)

	if hadPrior {
		return prior.Value, true
	}
	return zero, false
}

func (c *Cache[K, V]) weightOf(key K, value V) uint32 {
	if c.cfg.Weigher != nil {
		return c.cfg.Weigher(key, value)
	}
	return 1
}

// evictLocked assumes policyMu is held. It restores the configured bound by
// repeatedly asking the policy for a victim. SelectVictim returning
// evicted=false does not by itself mean the policy is stuck: WindowTinyLFU
// reports retry=true whenever a Window candidate migrates into Main without
// a net removal (Main still has spare room, or Probation is momentarily
// empty), which shrinks the Window but leaves the store's size untouched,
// so evictLocked keeps retrying until a real removal happens. retry=false
// means nothing will change by calling again right now. Either the policy
// is genuinely empty, which is an invariant violation logged and surfaced
// through cfg.Logger (Put's public signature has no error return, so
// "surfaced" means logged loudly rather than propagated to the caller), or
// a policy like IdleTime is deliberately deferring because no entry has
// crossed its configured threshold yet, which is not an error: the cache
// simply stays over bound until a later Put runs evictLocked again with a
// later clock.
func (c *Cache[K, V]) evictLocked(now int64) {
	for c.overBound() {
		victim, evicted, retry := c.pol.SelectVictim(now)
		if evicted {
			c.removeVictim(victim, CauseEvicted)
			continue
		}
		if retry {
			continue
		}
		if c.pol.Len() == 0 {
			c.cfg.Logger.Error("eviction invariant violated", "error", NewErrEvictionFailed("select_victim returned none while over capacity").Error())
		}
		return
	}
}

func (c *Cache[K, V]) overBound() bool {
	if c.weighted && c.currentWeight.Load() > c.maxWeight {
		return true
	}
	return c.store.Len() > int64(c.cfg.MaxSize)
}

func (c *Cache[K, V]) removeVictim(key K, cause RemovalCause) {
	hash := hashKey(key)
	entry, ok := c.store.Remove(key, hash)
	if !ok {
		return
	}
	if c.weighted {
		c.currentWeight.Sub(uint64(entry.Weight))
	}
	c.schedule.Cancel(key)
	c.statsRec.RecordEviction()
	c.cfg.MetricsCollector.RecordEviction()
	c.dispatchOnRemove(key, entry.Value, cause)
}

// Remove deletes key if present and returns its prior value.
func (c *Cache[K, V]) Remove(key K) (V, bool) {
	var zero V
	if c.cfg.ReadOnly {
		c.cfg.Logger.Error("remove rejected: cache is read-only", "key", formatKey(key))
		return zero, false
	}
	start := c.now()
	hash := hashKey(key)
	entry, ok := c.store.Remove(key, hash)
	if !ok {
		return zero, false
	}
	if c.weighted {
		c.currentWeight.Sub(uint64(entry.Weight))
	}
	c.schedule.Cancel(key)

	c.policyMu.Lock()
	c.pol.Remove(key)
	c.policyMu.Unlock()

	c.cfg.MetricsCollector.RecordRemove(c.now() - start)
	c.dispatchOnRemove(key, entry.Value, CauseExplicit)
	return entry.Value, true
}

// Invalidate removes key without returning its prior value.
func (c *Cache[K, V]) Invalidate(key K) {
	c.Remove(key)
}

// Clear drops every entry and resets the policy and sketch, leaving
// cumulative stats counters untouched.
func (c *Cache[K, V]) Clear() {
	c.store.Clear()
	c.schedule.Clear()
	c.currentWeight.Store(0)

	c.policyMu.Lock()
	c.pol.Clear()
	c.policyMu.Unlock()

	c.sketch.Reset()
}

// Len reports the approximate number of live entries; under concurrent
// load this may be stale by the time the caller observes it.
func (c *Cache[K, V]) Len() int {
	return int(c.store.Len())
}

// Stats returns a snapshot of cumulative operation counters.
func (c *Cache[K, V]) Stats() CacheStats {
	s := c.statsRec.Snapshot()
	return CacheStats{
		Hits:          s.Hits,
		Misses:        s.Misses,
		LoadSuccesses: s.LoadSuccesses,
		LoadFailures:  s.LoadFailures,
		Evictions:     s.Evictions,
		LoadTimeNanos: s.LoadTimeNanos,
		Size:          c.Len(),
		Capacity:      c.cfg.MaxSize,
	}
}

// Close stops the background maintenance goroutine and runs one final
// drain so in-flight access events and due sweeps are not silently lost.
// Close is idempotent; subsequent Put calls are rejected.
func (c *Cache[K, V]) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		c.runner.RunOnce()
	})
	return nil
}

func (c *Cache[K, V]) expiryCheck(entry *store.Entry[V], now int64) bool {
	return expiry.Expired(c.expiryPolicy(), entry, now)
}

// drainEvents is a maintenance.Tasks.DrainEvents implementation: it replays
// every access event recorded since the last tick into the policy as a
// Touch, skipping events whose key is no longer present in the store
// (checked through store.Peek). Only presence is checked: an event carries
// no entry version, so an access recorded before a key was removed and
// re-inserted is applied to the re-inserted entry's bookkeeping.
func (c *Cache[K, V]) drainEvents(now int64) {
	c.policyMu.Lock()
	defer c.policyMu.Unlock()
	c.events.DrainAll(func(ev accessEvent[K]) {
		if _, ok := c.store.Peek(ev.key, ev.hash); !ok {
			return
		}
		// WindowTinyLFU's Touch increments the sketch itself; other
		// policies ignore the sketch entirely. Either way, frequency
		// accounting belongs to the policy, not this drain loop.
		c.pol.Touch(ev.key, ev.hash, now)
	})
}

// sweepExpired is a maintenance.Tasks.SweepExpired implementation.
func (c *Cache[K, V]) sweepExpired(now int64) {
	candidates := expiry.Sweep(c.store, c.expiryPolicy(), now, hashKey[K])
	for _, cand := range candidates {
		entry, ok := c.store.Peek(cand.Key, cand.Hash)
		if !ok || !expiry.Expired(c.expiryPolicy(), entry, now) {
			continue
		}
		if !c.store.CompareAndRemove(cand.Key, cand.Hash, entry) {
			continue
		}
		if c.weighted {
			c.currentWeight.Sub(uint64(entry.Weight))
		}
		c.schedule.Cancel(cand.Key)

		c.policyMu.Lock()
		c.pol.Remove(cand.Key)
		c.policyMu.Unlock()

		c.cfg.MetricsCollector.RecordExpiration()
		c.dispatchOnRemove(cand.Key, entry.Value, CauseExpired)
	}
}

// fireRefresh is a maintenance.Tasks.FireRefresh implementation: it pops due
// refresh schedules and reloads each key asynchronously, dropping the
// result if the entry's version advanced since the refresh was scheduled
// (a newer Put always wins over a stale refresh, per the documented
// resolution for refresh-vs-concurrent-write interaction).
func (c *Cache[K, V]) fireRefresh(now int64) {
	due := c.schedule.DrainDue(now)
	for _, d := range due {
		entry, ok := c.store.Peek(d.Key, d.Hash)
		if !ok || entry.Version != d.Version {
			continue
		}
		go c.reloadForRefresh(d.Key, d.Hash, d.Version)
	}
}

func (c *Cache[K, V]) reloadForRefresh(key K, hash uint64, version uint64) {
	defer func() {
		if r := recover(); r != nil {
			c.cfg.Logger.Error("refresh loader panicked", "key", formatKey(key), "panic", r)
		}
	}()

	var value V
	var err error
	start := c.now()
	switch {
	case c.cfg.AsyncLoader != nil:
		value, err = c.cfg.AsyncLoader(context.Background(), key)
	case c.cfg.Loader != nil:
		value, err = c.cfg.Loader(key)
	default:
		return
	}

	elapsed := c.now() - start
	c.dispatchOnLoad(key, value, err)
	if err != nil {
		c.statsRec.RecordLoadFailure(elapsed)
		return
	}
	c.statsRec.RecordLoadSuccess(elapsed)

	entry, ok := c.store.Peek(key, hash)
	if !ok || entry.Version != version {
		return // a newer put raced ahead of this refresh; drop the stale result
	}
	c.Put(key, value)
}

func (c *Cache[K, V]) dispatchOnPut(key K, value V) {
	for _, l := range c.cfg.Listeners {
		l := l
		dispatchPanicRecovery(c.cfg.Logger, "OnPut", func() { l.OnPut(key, value) })
	}
}

func (c *Cache[K, V]) dispatchOnRemove(key K, value V, cause RemovalCause) {
	for _, l := range c.cfg.Listeners {
		l := l
		dispatchPanicRecovery(c.cfg.Logger, "OnRemove", func() { l.OnRemove(key, value, cause) })
	}
}

func (c *Cache[K, V]) dispatchOnLoad(key K, value V, err error) {
	for _, l := range c.cfg.Listeners {
		l := l
		dispatchPanicRecovery(c.cfg.Logger, "OnLoad", func() { l.OnLoad(key, value, err) })
	}
}

// Keys returns a weakly consistent snapshot of the keys present at some
// point during the call; it does not lock the whole store and may miss
// concurrent inserts or include since-removed keys.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, c.Len())
	now := c.now()
	c.store.Iter(func(s store.Snapshot[K, V]) bool {
		if !expiry.Expired(c.expiryPolicy(), s.Entry, now) {
			keys = append(keys, s.Key)
		}
		return true
	})
	return keys
}

// Values returns a weakly consistent snapshot of the values present at some
// point during the call.
func (c *Cache[K, V]) Values() []V {
	values := make([]V, 0, c.Len())
	now := c.now()
	c.store.Iter(func(s store.Snapshot[K, V]) bool {
		if !expiry.Expired(c.expiryPolicy(), s.Entry, now) {
			values = append(values, s.Entry.Value)
		}
		return true
	})
	return values
}

// Entry is one key/value pair surfaced by Entries.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Entries returns a weakly consistent snapshot of key/value pairs present
// at some point during the call.
func (c *Cache[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, c.Len())
	now := c.now()
	c.store.Iter(func(s store.Snapshot[K, V]) bool {
		if !expiry.Expired(c.expiryPolicy(), s.Entry, now) {
			entries = append(entries, Entry[K, V]{Key: s.Key, Value: s.Entry.Value})
		}
		return true
	})
	return entries
}

// wakeMaintenance requests an out-of-band maintenance tick, used by
// hot-reload after a change that should take effect sooner than the next
// scheduled tick.
func (c *Cache[K, V]) wakeMaintenance() {
	c.runner.Wake()
}
