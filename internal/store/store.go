// Package store implements the sharded concurrent key/value table backing
// the cache core. Each shard is an independent mutex-guarded map, keeping
// critical sections short; callers cross shard boundaries only through the
// Store API, never by holding two shard locks at once.
package store

import (
	"sync"
)

// Entry is the metadata the engine keeps alongside every value: enough to
// evaluate expiration and refresh predicates and to detect the
// check-then-act races the refresh and load-coalescing paths must avoid.
type Entry[V any] struct {
	Value        V
	Weight       uint32
	CreatedNanos int64
	AccessNanos  int64
	Version      uint64
}

// shard is one partition of the table. A short critical section covers
// nothing but the map operation itself; expiration and policy bookkeeping
// happen outside the lock.
type shard[K comparable, V any] struct {
	mu   sync.Mutex
	data map[K]*Entry[V]
}

// Store is a generic, sharded concurrent map from K to Entry[V]. Sharding is
// by the caller-supplied hash, so Store never hashes keys itself: the
// engine's single hasher is the source of truth for both the store and the
// eviction policy.
type Store[K comparable, V any] struct {
	shards []shard[K, V]
	mask   uint64
	size   int64 // guarded by sizeMu to keep it exact across shards
	sizeMu sync.Mutex
}

// New builds a Store with shardCount shards (rounded up to a power of two).
func New[K comparable, V any](shardCount int) *Store[K, V] {
	n := nextPowerOf2(shardCount)
	s := &Store[K, V]{
		shards: make([]shard[K, V], n),
		mask:   uint64(n - 1),
	}
	for i := range s.shards {
		s.shards[i].data = make(map[K]*Entry[V])
	}
	return s
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}

func (s *Store[K, V]) shardFor(hash uint64) *shard[K, V] {
	return &s.shards[hash&s.mask]
}

// ExpiryCheck reports whether entry is expired as of now; the store calls
// this on every read so expired entries never appear to have been found,
// without needing a background sweep to keep reads correct.
type ExpiryCheck[V any] func(entry *Entry[V], now int64) bool

// Get returns the live entry for key, or (nil, false) if absent or expired.
// When expired, the entry is removed from its shard before returning.
func (s *Store[K, V]) Get(key K, hash uint64, now int64, expired ExpiryCheck[V]) (*Entry[V], bool) {
	sh := s.shardFor(hash)
	sh.mu.Lock()
	e, ok := sh.data[key]
	if !ok {
		sh.mu.Unlock()
		return nil, false
	}
	if expired != nil && expired(e, now) {
		delete(sh.data, key)
		sh.mu.Unlock()
		s.decrSize()
		return nil, false
	}
	sh.mu.Unlock()
	return e, true
}

// Peek returns the entry without evaluating expiration, used by maintenance
// sweeps that want to make their own expiry decisions under the same lock.
func (s *Store[K, V]) Peek(key K, hash uint64) (*Entry[V], bool) {
	sh := s.shardFor(hash)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.data[key]
	return e, ok
}

// Put inserts or overwrites key's entry, returning whether this created a
// new key (as opposed to overwriting one already present).
func (s *Store[K, V]) Put(key K, hash uint64, entry *Entry[V]) (isNew bool) {
	sh := s.shardFor(hash)
	sh.mu.Lock()
	_, existed := sh.data[key]
	sh.data[key] = entry
	sh.mu.Unlock()
	if !existed {
		s.incrSize()
	}
	return !existed
}

// Remove deletes key if present, returning the removed entry.
func (s *Store[K, V]) Remove(key K, hash uint64) (*Entry[V], bool) {
	sh := s.shardFor(hash)
	sh.mu.Lock()
	e, ok := sh.data[key]
	if ok {
		delete(sh.data, key)
	}
	sh.mu.Unlock()
	if ok {
		s.decrSize()
	}
	return e, ok
}

// CompareAndRemove deletes key only if its current entry is still the same
// one the caller observed (by pointer identity), avoiding a lost-update race
// against a concurrent Put. Used by expiration and refresh paths that
// validated an entry outside the lock.
func (s *Store[K, V]) CompareAndRemove(key K, hash uint64, expect *Entry[V]) bool {
	sh := s.shardFor(hash)
	sh.mu.Lock()
	e, ok := sh.data[key]
	if !ok || e != expect {
		sh.mu.Unlock()
		return false
	}
	delete(sh.data, key)
	sh.mu.Unlock()
	s.decrSize()
	return true
}

// Len reports the number of live entries, exact with respect to completed
// Put/Remove/CompareAndRemove calls and lazy removals performed by Get.
func (s *Store[K, V]) Len() int64 {
	s.sizeMu.Lock()
	defer s.sizeMu.Unlock()
	return s.size
}

func (s *Store[K, V]) incrSize() {
	s.sizeMu.Lock()
	s.size++
	s.sizeMu.Unlock()
}

func (s *Store[K, V]) decrSize() {
	s.sizeMu.Lock()
	s.size--
	s.sizeMu.Unlock()
}

// Clear empties every shard.
func (s *Store[K, V]) Clear() {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		sh.data = make(map[K]*Entry[V])
		sh.mu.Unlock()
	}
	s.sizeMu.Lock()
	s.size = 0
	s.sizeMu.Unlock()
}

// Snapshot is one key/entry pair surfaced by Iter. Iteration is weakly
// consistent: it reflects a moving snapshot of each shard in turn, not a
// single instant across the whole table.
type Snapshot[K comparable, V any] struct {
	Key   K
	Entry *Entry[V]
}

// Iter calls visit for every live entry, shard by shard, stopping early if
// visit returns false. Each shard is locked only while it is being copied,
// never for the duration of the callback.
func (s *Store[K, V]) Iter(visit func(Snapshot[K, V]) bool) {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		batch := make([]Snapshot[K, V], 0, len(sh.data))
		for k, e := range sh.data {
			batch = append(batch, Snapshot[K, V]{Key: k, Entry: e})
		}
		sh.mu.Unlock()

		for _, snap := range batch {
			if !visit(snap) {
				return
			}
		}
	}
}
