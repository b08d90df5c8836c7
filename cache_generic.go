// cache_generic.go: key hashing for the generic cache core
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

import (
	"fmt"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

var keyHashSeed = maphash.MakeSeed()

// hashKey computes a 64-bit hash for a comparable key, used as the single
// source of truth for both the store's sharding and the eviction policy's
// sketch lookups — the store never hashes on its own, so a key's shard and
// its sketch slot are always derived from the same value.
//
// string keys take the fast, allocation-free xxhash path; every other
// comparable type falls back to hash/maphash's generic Comparable, which
// covers structs, arrays, and pointer-shaped keys without reflection.
func hashKey[K comparable](key K) uint64 {
	if s, ok := any(key).(string); ok {
		return xxhash.Sum64String(s)
	}
	return maphash.Comparable(keyHashSeed, key)
}

// formatKey renders a key for diagnostic context on errors and logging.
// Only used off the hot path.
func formatKey[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprintf("%v", key)
}
