// Package policy implements the pluggable eviction-policy variants described
// in the admission/eviction pipeline: LRU, LFU, FIFO, WeightBased, IdleTime,
// Composite, and the primary Window-TinyLFU policy. All variants share the
// same narrow contract so the engine can swap policies without special
// casing. The recency variants (LRU, FIFO, FILO) and Window-TinyLFU keep
// their ordering in arena-backed intrusive lists (see internal/arena)
// rather than a pointer-linked structure, per the "avoid cyclic graphs of
// entries" design guidance; LFU, WeightBased and IdleTime use plain maps
// and slices.
package policy

// Policy is the contract every eviction-policy variant implements. now is
// nanoseconds on the caller's monotonic clock; only IdleTime uses it.
type Policy[K comparable] interface {
	// Add records a newly inserted key with its hash (for sketch-backed
	// variants) and weight.
	Add(key K, hash uint64, weight uint32, now int64)

	// Touch records an access to an already-tracked key, updating recency
	// and/or frequency bookkeeping.
	Touch(key K, hash uint64, now int64)

	// Remove drops all bookkeeping for key, wherever it lives.
	Remove(key K)

	// SelectVictim chooses an entry to evict to restore the policy's size
	// invariant. evicted reports whether key names an entry the caller must
	// remove from the store. When evicted is false, retry distinguishes two
	// different reasons nothing was removed: retry true means the policy
	// changed its internal bookkeeping (e.g. WindowTinyLFU migrating a
	// Window candidate into Main without a net removal) and calling
	// SelectVictim again with the same now may make further progress; retry
	// false means the policy has nothing left to offer right now (it is
	// empty, or every tracked entry is deliberately exempt, as with
	// IdleTime's configured threshold) and the caller should stop until
	// state external to the policy changes.
	SelectVictim(now int64) (key K, evicted bool, retry bool)

	// Clear drops all bookkeeping.
	Clear()

	// Len reports how many keys the policy is currently tracking.
	Len() int
}

// Variant names the supported eviction-policy kinds, used by Config to
// select a concrete implementation without exposing runtime policy swapping
// on a live cache.
type Variant int

const (
	WindowTinyLFU Variant = iota
	LRU
	LFU
	FIFO
	FILO
	WeightBased
	IdleTime
)

// FrequencySource estimates recent access frequency for a hash, backing
// WindowTinyLFU's admission comparisons. internal/sketch.Frequency satisfies
// this.
type FrequencySource interface {
	Estimate(hash uint64) uint64
	Increment(hash uint64)
}
