// loading.go: GetOrLoad implementation built on singleflight coalescing
//
// SPDX-License-Identifier: MPL-2.0
package tinylfu

import (
	"context"
	"strconv"
)

// loadGroupKey derives the hash part of the internal/loadgroup dedup key
// for a cache key. GetOrLoadWithContext appends formatKey(key) to it, so
// two distinct keys whose hashes collide run separate loads instead of
// sharing one loader result.
func loadGroupKey(hash uint64) string {
	return strconv.FormatUint(hash, 36)
}

// GetOrLoad returns key's value, computing it with cfg.Loader on a miss.
// Concurrent callers for the same missing key share one loader invocation;
// late arrivals observe the same result or the same failure. On failure the
// cache's state is unchanged and the failure is not cached — a subsequent
// GetOrLoad for the same key tries the loader again.
func (c *Cache[K, V]) GetOrLoad(key K) (V, error) {
	return c.GetOrLoadWithContext(context.Background(), key)
}

// GetOrLoadWithContext is GetOrLoad with a caller-supplied deadline. If ctx
// is cancelled before the (possibly shared) load completes, this call
// returns ctx.Err() immediately; the in-flight load itself keeps running to
// completion for the benefit of any other waiter.
func (c *Cache[K, V]) GetOrLoadWithContext(ctx context.Context, key K) (V, error) {
	var zero V
	if c.cfg.Loader == nil && c.cfg.AsyncLoader == nil {
		return zero, NewErrInvalidLoader(formatKey(key))
	}
	if c.cfg.ReadOnly {
		return zero, NewErrReadOnly("get_or_load")
	}

	if value, ok := c.Get(key); ok {
		return value, nil
	}

	hash := hashKey(key)
	start := c.now()
	result := c.loads.Load(ctx, loadGroupKey(hash)+"/"+formatKey(key), func(ctx context.Context) (v V, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = NewErrPanicRecovered("get_or_load", r)
			}
		}()
		if c.cfg.AsyncLoader != nil {
			return c.cfg.AsyncLoader(ctx, key)
		}
		return c.cfg.Loader(key)
	})
	elapsed := c.now() - start

	if result.Err != nil && result.Err == ctx.Err() {
		return zero, result.Err
	}
	c.dispatchOnLoad(key, result.Value, result.Err)
	if result.Err != nil {
		c.statsRec.RecordLoadFailure(elapsed)
		if GetErrorCode(result.Err) == ErrCodePanicRecovered {
			return zero, result.Err
		}
		return zero, NewErrLoaderFailed(formatKey(key), result.Err)
	}
	c.statsRec.RecordLoadSuccess(elapsed)

	// The caller that actually ran the loader stores the result; a caller
	// that only shared it must not also race to store, but a duplicate Put
	// here is harmless (same key, same value, idempotent) and much simpler
	// than plumbing "am I the leader" out of Coordinator.Load.
	c.Put(key, result.Value)
	return result.Value, nil
}
