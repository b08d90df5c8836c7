// Package tinylfu provides a generic, thread-safe, in-memory cache using
// the Window-TinyLFU admission and eviction policy, with pluggable
// alternative policies (LRU, LFU, FIFO, FILO, weight-based, idle-time).
//
// # Overview
//
// tinylfu is designed for services that need a local cache in front of a
// slower backing store, with:
//   - Type Safety: Cache[K comparable, V any], no interface{} at the API
//   - High hit ratio: Window-TinyLFU admits candidates by estimated
//     frequency rather than recency alone
//   - Low read-path contention: hits are recorded through striped,
//     best-effort ring buffers and replayed by a single maintenance
//     goroutine, instead of taking a lock per read
//   - Cache stampede prevention: GetOrLoad coalesces concurrent loads for
//     the same key via singleflight
//   - Observability: structured errors, pluggable Logger and
//     MetricsCollector, optional OpenTelemetry integration (separate
//     module)
//
// # Features
//
//   - Window-TinyLFU Algorithm: admission window plus probationary/
//     protected main segments, Count-Min Sketch frequency estimation
//   - Alternative Policies: LRU, LFU, FIFO, FILO, weight-based, idle-time,
//     selectable via Config.EvictionPolicy
//   - Expiration: ExpireAfterWrite and ExpireAfterAccess, lazy on read plus
//     a periodic background sweep
//   - Refresh-Ahead: RefreshAfterWrite reloads a stale entry in the
//     background, serving the old value until the reload completes
//   - GetOrLoad API: singleflight-coalesced loading, with a context-aware
//     variant
//   - Hot-Reload: HotConfig applies ExpireAfterWrite, ExpireAfterAccess,
//     RefreshAfterWrite and MaintenanceInterval changes from a watched
//     config file without restarting the cache
//   - Structured Errors: error codes via errors.go, wrapping
//     internal/cerr
//   - Metrics Collection: MetricsCollector interface for observability
//
// # Quick Start
//
//	import "github.com/ashgrove-cache/tinylfu"
//
//	type User struct {
//	    ID   int
//	    Name string
//	}
//
//	func main() {
//	    cache, err := tinylfu.New[string, User](tinylfu.Config[string, User]{
//	        MaxSize:          10_000,
//	        ExpireAfterWrite: time.Hour,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer cache.Close()
//
//	    cache.Put("user:123", User{ID: 123, Name: "Alice"})
//
//	    if user, found := cache.Get("user:123"); found {
//	        fmt.Printf("User: %s\n", user.Name)
//	    }
//
//	    stats := cache.Stats()
//	    fmt.Printf("Hit ratio: %.2f%%\n", stats.HitRatio())
//	}
//
// # Cache Stampede Prevention
//
// GetOrLoad deduplicates concurrent loads for the same key: of N
// goroutines calling GetOrLoad for a missing key at once, the configured
// Loader runs exactly once, and every caller observes that one call's
// result.
//
//	cache, _ := tinylfu.New[string, User](tinylfu.Config[string, User]{
//	    MaxSize: 10_000,
//	    Loader: func(key string) (User, error) {
//	        return fetchUserFromDB(key)
//	    },
//	})
//
//	user, err := cache.GetOrLoad("user:123")
//
// With a context deadline, using AsyncLoader instead:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	user, err := cache.GetOrLoadWithContext(ctx, "user:123")
//
// A failed load is never cached: the next GetOrLoad for the same key
// tries the loader again.
//
// # Window-TinyLFU Algorithm
//
// Window-TinyLFU splits the configured capacity into:
//   - Window region (WindowRatio of MaxSize): recently admitted
//     candidates, LRU-ordered
//   - Main region: Probationary and Protected segments, holding entries
//     that survived at least one admission contest
//
// When the window is full, its LRU victim competes for a main-region slot
// against the main region's own LRU victim; the Count-Min Sketch's
// frequency estimate decides the winner. During an initial warmup period
// the contest is skipped and candidates are admitted unconditionally, so
// the sketch has a chance to warm up before it starts gatekeeping.
//
// # Concurrency Model
//
//   - Reads (Get) never block on the eviction policy: a hit is recorded
//     into a striped ring buffer and applied to the policy later by the
//     maintenance goroutine
//   - Writes (Put) evict synchronously under a single policy mutex, so a
//     caller observes a size/weight bound already restored when Put
//     returns
//   - The store is sharded; unrelated keys rarely contend on the same
//     shard's mutex
//   - All exported Cache methods are safe for concurrent use
//
// # Expiration
//
//	cache, _ := tinylfu.New[string, User](tinylfu.Config[string, User]{
//	    MaxSize:          10_000,
//	    ExpireAfterWrite: 5 * time.Minute,
//	})
//
// Expired entries are never returned by Get (checked lazily against the
// clock on access) and are also reclaimed by a periodic background sweep,
// so memory is not held by entries nobody reads again.
//
// # Observability
//
//	stats := cache.Stats()
//	fmt.Printf("Hits: %d, Misses: %d, Hit Ratio: %.2f%%\n",
//	    stats.Hits, stats.Misses, stats.HitRatio())
//	fmt.Printf("Size: %d, Evictions: %d\n", stats.Size, stats.Evictions)
//
// OpenTelemetry integration lives in the separate tinylfu/otel module and
// implements the MetricsCollector interface:
//
//	import tinylfuotel "github.com/ashgrove-cache/tinylfu/otel"
//
//	collector, _ := tinylfuotel.NewOTelMetricsCollector(meterProvider)
//	cache, _ := tinylfu.New[string, User](tinylfu.Config[string, User]{
//	    MaxSize:          10_000,
//	    MetricsCollector: collector,
//	})
//
// The core tinylfu package has zero OpenTelemetry dependencies.
//
// # Hot Reload
//
//	cache, _ := tinylfu.New[string, User](tinylfu.Config[string, User]{MaxSize: 10_000})
//	hc, err := tinylfu.NewHotConfig(cache, tinylfu.HotConfigOptions{
//	    ConfigPath: "cache.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hc.Start()
//	defer hc.Stop()
//
// Changing expire_after_write, expire_after_access, refresh_after_write
// or maintenance_interval in the watched file takes effect on the running
// cache; max_size and window_ratio are recorded in ReloadableSettings but
// require constructing a new Cache to apply, since they change the shape
// of the store and policy.
//
// # Error Handling
//
//	user, err := cache.GetOrLoad("user:123")
//	if err != nil {
//	    switch {
//	    case tinylfu.IsLoaderError(err):
//	        log.Printf("loader failed: %v", err)
//	    case tinylfu.IsRetryable(err):
//	        // safe to retry the same call
//	    default:
//	        log.Printf("cache error: %v", err)
//	    }
//	    return
//	}
//
// Available error codes include ErrCodeEmptyKey, ErrCodeInvalidLoader,
// ErrCodePanicRecovered, ErrCodeLoaderFailed, ErrCodeInvalidConfig,
// ErrCodeCacheClosed and ErrCodeReadOnly; see errors.go.
//
// # Thread Safety
//
// All Cache[K, V] methods are safe for concurrent use:
//
//	cache, _ := tinylfu.New[string, int](tinylfu.Config[string, int]{MaxSize: 1000})
//
//	go func() { cache.Put("key1", 1) }()
//	go func() { cache.Get("key1") }()
//	go func() { cache.Remove("key1") }()
//	go func() { _ = cache.Stats() }()
//
// # Best Practices
//
//  1. Size MaxSize to roughly your working set; too small raises the
//     eviction rate, too large wastes memory without raising hit ratio
//     further.
//  2. Monitor Stats().HitRatio(); a hit ratio well below what
//     Window-TinyLFU typically achieves on your access pattern usually
//     means the cache is undersized or the access pattern lacks locality.
//  3. Prefer GetOrLoad over manual Get-then-Put-on-miss to get stampede
//     protection for free.
//  4. Pick ExpireAfterWrite/ExpireAfterAccess based on your data's
//     freshness requirements, not just memory pressure.
//  5. Pass a context with a deadline to GetOrLoadWithContext when the
//     loader talks to a network dependency that can hang.
//  6. Enable MetricsCollector (tinylfu/otel or a custom implementation)
//     in production and alert on eviction rate and hit ratio.
//
// # Examples
//
// The module ships no examples directory; the package tests show usage:
//   - cache_test.go and loading_test.go: Put/Get, eviction and GetOrLoad
//   - errors_test.go: Error handling patterns
//   - otel/collector_test.go: OpenTelemetry integration
//
// # Packages
//
//   - github.com/ashgrove-cache/tinylfu: Core cache implementation
//   - github.com/ashgrove-cache/tinylfu/otel: OpenTelemetry integration (separate module)
//   - github.com/ashgrove-cache/tinylfu/zapadapter: Logger backed by zap
//   - github.com/ashgrove-cache/tinylfu/promadapter: MetricsCollector backed by client_golang
//
// # License
//
// See LICENSE file in the repository.
package tinylfu
