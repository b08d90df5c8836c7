// Package expiry evaluates time-based eviction predicates and performs the
// bounded, opportunistic sweep that reclaims entries nothing has read lately
// and so would otherwise survive past their deadline until the next read.
package expiry

import "github.com/ashgrove-cache/tinylfu/internal/store"

// maxSweepBatch bounds how many expired entries a single maintenance tick
// will reclaim, so a pathological backlog cannot turn one tick into an
// unbounded pause.
const maxSweepBatch = 1024

// Policy holds the configured expiry durations. A zero duration means that
// kind of expiry is disabled. Both may be set; an entry expires at whichever
// deadline comes first.
type Policy struct {
	AfterWrite  int64 // nanoseconds, 0 = disabled
	AfterAccess int64 // nanoseconds, 0 = disabled
}

// Enabled reports whether either expiry mode is configured.
func (p Policy) Enabled() bool {
	return p.AfterWrite > 0 || p.AfterAccess > 0
}

// Expired evaluates p against entry as of now. This is the ExpiryCheck the
// store's Get calls on every lookup, so an expired entry never appears live
// even if no sweep has reclaimed it yet.
func Expired[V any](p Policy, entry *store.Entry[V], now int64) bool {
	if p.AfterWrite > 0 && now-entry.CreatedNanos >= p.AfterWrite {
		return true
	}
	if p.AfterAccess > 0 && now-entry.AccessNanos >= p.AfterAccess {
		return true
	}
	return false
}

// Candidate is one key due for expiration, discovered by Sweep.
type Candidate[K comparable] struct {
	Key  K
	Hash uint64
}

// Sweep scans the store for expired entries and reports up to maxSweepBatch
// of them. It does not mutate the store: the caller removes each candidate
// through store.CompareAndRemove, so a concurrent write that refreshed the
// entry in between is not clobbered.
func Sweep[K comparable, V any](s *store.Store[K, V], p Policy, now int64, hashOf func(K) uint64) []Candidate[K] {
	if !p.Enabled() {
		return nil
	}
	var found []Candidate[K]
	s.Iter(func(snap store.Snapshot[K, V]) bool {
		if Expired(p, snap.Entry, now) {
			found = append(found, Candidate[K]{Key: snap.Key, Hash: hashOf(snap.Key)})
		}
		return len(found) < maxSweepBatch
	})
	return found
}
