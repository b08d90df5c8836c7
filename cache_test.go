// cache_test.go: end-to-end behavior of the generic cache core
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ashgrove-cache/tinylfu/internal/policy"
)

// manualTime is a TimeProvider a test can advance explicitly, avoiding real
// sleeps for expiry and refresh liveness checks.
type manualTime struct {
	nanos int64
}

func (m *manualTime) Now() int64              { return atomic.LoadInt64(&m.nanos) }
func (m *manualTime) Advance(d time.Duration) { atomic.AddInt64(&m.nanos, int64(d)) }

func TestBasicPutGetStats(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{MaxSize: 10, RecordStats: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Put("a", 1)
	cache.Put("b", 2)

	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Fatalf("expected (1, true), got (%v, %v)", v, ok)
	}
	if v, ok := cache.Get("b"); !ok || v != 2 {
		t.Fatalf("expected (2, true), got (%v, %v)", v, ok)
	}

	stats := cache.Stats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.Size != 2 {
		t.Errorf("expected size 2, got %d", stats.Size)
	}
	if stats.Capacity != 10 {
		t.Errorf("expected capacity 10, got %d", stats.Capacity)
	}
	if ratio := stats.HitRatio(); ratio < 66.0 || ratio > 67.0 {
		t.Errorf("expected hit ratio ~66.67%%, got %v", ratio)
	}

	if prior, replaced := cache.Put("a", 100); !replaced || prior != 1 {
		t.Fatalf("expected Put to report prior value (1, true), got (%v, %v)", prior, replaced)
	}
	if v, _ := cache.Get("a"); v != 100 {
		t.Errorf("expected updated value 100, got %v", v)
	}
}

func TestLRUEvictionOrder(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{
		MaxSize:        2,
		EvictionPolicy: policy.LRU,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	cache.Put("b", 2)

	// Touch "a" so it becomes most recently used; the access is only
	// posted to a ring buffer, so force a synchronous drain before the
	// next Put decides an eviction.
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected hit on a")
	}
	cache.runner.RunOnce()

	// Cache is now at capacity with b as the LRU tail; c should evict b.
	cache.Put("c", 3)

	if _, ok := cache.Get("b"); ok {
		t.Error("expected b to have been evicted as the least recently used entry")
	}
	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("expected a to survive, got (%v, %v)", v, ok)
	}
	if v, ok := cache.Get("c"); !ok || v != 3 {
		t.Errorf("expected c to be present, got (%v, %v)", v, ok)
	}
}

func TestWindowTinyLFUAdmissionHitRate(t *testing.T) {
	const maxSize = 100

	cache, err := New[string, int](Config[string, int]{MaxSize: maxSize, RecordStats: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	keyOf := func(n int) string { return fmt.Sprintf("K%d", n) }

	// Fill the cache to exactly its capacity.
	for i := 0; i < 100; i++ {
		cache.Put(keyOf(i), i)
	}

	// Make the hot set's elevated access frequency well established before
	// any eviction contest can see it: every access is recorded into a
	// ring buffer and only reaches the sketch once drained, so accumulate
	// all 200 accesses first and drain them in a single maintenance tick
	// rather than interleaving drains (which would also age the sketch
	// between rounds and blunt the gap this phase is meant to build).
	for i := 0; i < 10; i++ {
		for n := 0; n < 20; n++ {
			cache.Get(keyOf(i))
		}
	}
	cache.runner.RunOnce()

	// Cold stream: insert another 100 distinct keys, each one competing
	// with the existing resident set for a slot.
	for i := 100; i < 200; i++ {
		cache.Put(keyOf(i), i)
	}

	resident := 0
	hits := 0
	for i := 0; i < 10; i++ {
		if cache.ContainsKey(keyOf(i)) {
			resident++
		}
		if _, ok := cache.Get(keyOf(i)); ok {
			hits++
		}
	}

	if resident < 8 {
		t.Errorf("expected at least 8 of the hot set's 10 keys to remain resident, got %d", resident)
	}
	if ratio := float64(hits) / 10; ratio < 0.8 {
		t.Errorf("expected hit ratio >= 0.8 replaying the hot set, got %.2f (%d/10)", ratio, hits)
	}
}

func TestExpireAfterWriteLiveness(t *testing.T) {
	clock := &manualTime{nanos: 1_000_000}
	cache, err := New[string, int](Config[string, int]{
		MaxSize:          10,
		ExpireAfterWrite: time.Minute,
		TimeProvider:     clock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Fatalf("expected immediate hit, got (%v, %v)", v, ok)
	}

	clock.Advance(30 * time.Second)
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected entry to still be live before expiry")
	}

	clock.Advance(31 * time.Second)
	if _, ok := cache.Get("a"); ok {
		t.Fatal("expected entry to have expired after ExpireAfterWrite elapsed")
	}
}

func TestRefreshAfterWriteLiveness(t *testing.T) {
	var loadCount int64
	cache, err := New[string, int](Config[string, int]{
		MaxSize:             10,
		RefreshAfterWrite:   5 * time.Millisecond,
		MaintenanceInterval: 2 * time.Millisecond,
		Loader: func(key string) (int, error) {
			n := atomic.AddInt64(&loadCount, 1)
			return int(n), nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 0)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt64(&loadCount) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt64(&loadCount) == 0 {
		t.Fatal("expected refresh-after-write to have fired at least one reload")
	}
}

func TestLoadCoalescing(t *testing.T) {
	var loadCount int64
	block := make(chan struct{})
	cache, err := New[string, int](Config[string, int]{
		MaxSize: 10,
		Loader: func(key string) (int, error) {
			atomic.AddInt64(&loadCount, 1)
			<-block
			return 42, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	const callers = 10
	var wg sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		i := i
		go func() {
			defer wg.Done()
			v, err := cache.GetOrLoad("shared")
			results[i] = v
			errs[i] = err
		}()
	}

	// Give every goroutine a chance to enter the coordinator before
	// releasing the single loader invocation they should be sharing.
	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	if got := atomic.LoadInt64(&loadCount); got != 1 {
		t.Errorf("expected exactly one loader invocation for 10 concurrent callers, got %d", got)
	}
	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: unexpected error: %v", i, err)
		}
		if results[i] != 42 {
			t.Errorf("caller %d: expected 42, got %d", i, results[i])
		}
	}
}

func TestGetOrLoadDoesNotCacheFailure(t *testing.T) {
	var attempts int64
	cache, err := New[string, int](Config[string, int]{
		MaxSize: 10,
		Loader: func(key string) (int, error) {
			n := atomic.AddInt64(&attempts, 1)
			if n == 1 {
				return 0, errors.New("transient failure")
			}
			return 7, nil
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	if _, err := cache.GetOrLoad("k"); err == nil {
		t.Fatal("expected first load to fail")
	}
	if _, ok := cache.Get("k"); ok {
		t.Fatal("expected failed load to not populate the cache")
	}
	v, err := cache.GetOrLoad("k")
	if err != nil {
		t.Fatalf("expected second load to succeed, got %v", err)
	}
	if v != 7 {
		t.Errorf("expected 7, got %d", v)
	}
}

func TestGetOrLoadWithContextCancellation(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	cache, err := New[string, int](Config[string, int]{
		MaxSize: 10,
		AsyncLoader: func(ctx context.Context, key string) (int, error) {
			close(started)
			select {
			case <-unblock:
				return 1, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()
	defer close(unblock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.GetOrLoadWithContext(ctx, "k")
		done <- err
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a cancellation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for cancellation to propagate")
	}
}

func TestPutRejectedAfterClose(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{MaxSize: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cache.Close()

	if _, replaced := cache.Put("a", 1); replaced {
		t.Error("expected Put after Close to report no prior value")
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("expected Put after Close to have been rejected")
	}
}

func TestReadOnlyRejectsMutation(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{
		MaxSize:  10,
		ReadOnly: true,
		Loader:   func(key string) (int, error) { return 0, nil },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	if _, ok := cache.Get("a"); ok {
		t.Error("expected Put to be rejected on a read-only cache")
	}

	_, err = cache.GetOrLoadWithContext(context.Background(), "a")
	if err == nil || GetErrorCode(err) != ErrCodeReadOnly {
		t.Errorf("expected %s from GetOrLoad on a read-only cache, got %v", ErrCodeReadOnly, err)
	}
}

func TestGetOrLoadNilLoaderReturnsInvalidLoader(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{MaxSize: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	_, err = cache.GetOrLoad("a")
	if err == nil || GetErrorCode(err) != ErrCodeInvalidLoader {
		t.Errorf("expected %s, got %v", ErrCodeInvalidLoader, err)
	}
}

func TestGetOrLoadPanicIsRecovered(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{
		MaxSize: 10,
		Loader: func(key string) (int, error) {
			panic("boom")
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	_, err = cache.GetOrLoad("a")
	if err == nil {
		t.Fatal("expected a panicking loader to surface as an error")
	}
	if GetErrorCode(err) != ErrCodePanicRecovered {
		t.Errorf("expected %s, got %s", ErrCodePanicRecovered, GetErrorCode(err))
	}
}

func TestRemoveAndInvalidate(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{MaxSize: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	if v, ok := cache.Remove("a"); !ok || v != 1 {
		t.Fatalf("expected Remove to report (1, true), got (%v, %v)", v, ok)
	}
	if _, ok := cache.Remove("a"); ok {
		t.Fatal("expected second Remove to report no prior value")
	}

	cache.Put("b", 2)
	cache.Invalidate("b")
	if _, ok := cache.Get("b"); ok {
		t.Fatal("expected Invalidate to remove the entry")
	}
}

func TestClearResetsEntriesNotStats(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{MaxSize: 10, RecordStats: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	cache.Get("a")
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("expected Clear to drop all entries, len=%d", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("expected a to be gone after Clear")
	}
	if stats := cache.Stats(); stats.Hits == 0 {
		t.Error("expected cumulative hit counter to survive Clear")
	}
}

func TestContainsKeyDoesNotRecordStats(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{MaxSize: 10, RecordStats: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	if !cache.ContainsKey("a") {
		t.Error("expected ContainsKey to report true for a present key")
	}
	if cache.ContainsKey("missing") {
		t.Error("expected ContainsKey to report false for an absent key")
	}
	if stats := cache.Stats(); stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("expected ContainsKey to leave stats untouched, got %+v", stats)
	}
}

func TestKeysValuesEntriesSnapshot(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{MaxSize: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	cache.Put("b", 2)

	keys := cache.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	values := cache.Values()
	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %v", values)
	}
	entries := cache.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", entries)
	}
	seen := map[string]int{}
	for _, e := range entries {
		seen[e.Key] = e.Value
	}
	if seen["a"] != 1 || seen["b"] != 2 {
		t.Errorf("unexpected entries snapshot: %v", seen)
	}
}

func TestWeightedEviction(t *testing.T) {
	cache, err := New[string, int](Config[string, int]{
		MaxSize:       100,
		MaximumWeight: 10,
		Weigher:       func(key string, value int) uint32 { return uint32(value) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 4)
	cache.Put("b", 4)
	cache.Put("c", 4) // pushes total weight to 12, over the bound of 10

	total := 0
	for _, k := range []string{"a", "b", "c"} {
		if v, ok := cache.Get(k); ok {
			total += v
		}
	}
	if total > 10 {
		t.Errorf("expected resident weight to stay within MaximumWeight, got %d", total)
	}
}

// TestWindowTinyLFUStaysWithinSizeBound drives the default policy well past
// its Window region's tiny share of capacity (DefaultWindowRatio puts only
// ~1% of MaxSize there), so most admissions must migrate a Window candidate
// into Main before a real store-level eviction occurs. If evictLocked gave
// up after the first non-evicting SelectVictim call, the store would grow
// roughly twice as large as MaxSize before a genuine eviction ever ran.
func TestWindowTinyLFUStaysWithinSizeBound(t *testing.T) {
	const maxSize = 100
	cache, err := New[string, int](Config[string, int]{MaxSize: maxSize})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	for i := 0; i < 5*maxSize; i++ {
		cache.Put(fmt.Sprintf("K%d", i), i)
		if l := cache.Len(); l > maxSize {
			t.Fatalf("cache grew to %d entries after %d puts, want <= %d", l, i+1, maxSize)
		}
	}
}

// TestIdleTimePolicyDefersBelowThreshold exercises Config.IdleThreshold
// end-to-end: an entry touched more recently than the threshold must not be
// evicted to make room, even though the cache is over its nominal MaxSize.
func TestIdleTimePolicyDefersBelowThreshold(t *testing.T) {
	clock := &manualTime{nanos: 1_000_000}
	cache, err := New[string, int](Config[string, int]{
		MaxSize:        1,
		EvictionPolicy: policy.IdleTime,
		IdleThreshold:  time.Minute,
		TimeProvider:   clock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cache.Close()

	cache.Put("a", 1)
	clock.Advance(time.Second)
	cache.Put("b", 2) // over bound, but "a" has not been idle for a full minute yet

	if _, ok := cache.Get("a"); !ok {
		t.Error("expected a to still be resident: idle threshold not yet exceeded")
	}

	clock.Advance(2 * time.Minute)
	cache.Put("c", 3) // now "a" has been idle well past the threshold

	if _, ok := cache.Get("a"); ok {
		t.Error("expected a to have been evicted once its idle time exceeded the threshold")
	}
}
