// Version and package-wide constants.
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

// Version of this cache library.
const Version = "v0.1.0-dev"

// defaultShardCount is the minimum internal/store shard count when
// Config.ConcurrencyLevel is left at its default.
const defaultShardCount = DefaultConcurrencyLevel

// defaultStripeCount is the default cap on ring-buffer stripes used for
// access-event recording; Striped starts at one stripe and grows toward
// the cap under observed contention.
const defaultStripeCount = DefaultConcurrencyLevel

// defaultRingBufferCapacity is the per-stripe bounded queue capacity. Power
// of two, sized generously enough that a burst of reads between two
// maintenance ticks rarely overflows and drops an event.
const defaultRingBufferCapacity = 256

// defaultSketchMultiplier scales the item count passed to sketch.New
// relative to MaxSize. sketch.New allots maxSize/4 words of sixteen 4-bit
// counters, so a multiplier of 1 gives about four counters per tracked
// entry, which keeps frequency
// estimate collisions rare without wasting memory on a cache that will
// never approach its configured size.
const defaultSketchMultiplier = 1
