// listener.go: cache event listener dispatch
//
// SPDX-License-Identifier: MPL-2.0

package tinylfu

// RemovalCause identifies why an entry left the cache, passed to
// CacheEventListener.OnRemove so listeners can distinguish an evicted entry
// from an explicitly invalidated one.
type RemovalCause int

const (
	// CauseExplicit means the caller invoked Remove/Invalidate.
	CauseExplicit RemovalCause = iota

	// CauseEvicted means the policy reclaimed the entry to satisfy a size
	// or weight bound.
	CauseEvicted

	// CauseExpired means the entry's TTL elapsed.
	CauseExpired

	// CauseReplaced means a Put overwrote an existing value for the key.
	CauseReplaced
)

func (c RemovalCause) String() string {
	switch c {
	case CauseExplicit:
		return "explicit"
	case CauseEvicted:
		return "evicted"
	case CauseExpired:
		return "expired"
	case CauseReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// CacheEventListener observes mutations on a Cache[K, V]. Every method is
// called synchronously from the goroutine that caused the event: Put and
// Remove (evictions included, since Put performs them) for OnPut and
// OnRemove, the maintenance goroutine for OnRemove with CauseExpired, and
// GetOrLoad or a refresh reload for OnLoad. Calls are not serialized, so
// mutations on different goroutines dispatch concurrently. A listener must
// not block or call back into the cache it's attached to. A panicking
// listener is recovered and logged; it never aborts the operation that
// triggered it.
type CacheEventListener[K comparable, V any] interface {
	// OnPut fires after a new or replacing Put commits.
	OnPut(key K, value V)

	// OnRemove fires after an entry leaves the cache for any reason.
	OnRemove(key K, value V, cause RemovalCause)

	// OnLoad fires after a loader call completes, for GetOrLoad or a
	// refresh reload, successfully or not. err is nil on success.
	OnLoad(key K, value V, err error)
}

// dispatchPanicRecovery wraps a listener call so a panicking listener can
// never take down the calling goroutine (the hot path for OnPut/OnRemove,
// or the single maintenance goroutine for expiry removals).
func dispatchPanicRecovery(logger Logger, operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("cache event listener panicked", "operation", operation, "panic", r)
		}
	}()
	fn()
}
