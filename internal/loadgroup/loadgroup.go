// Package loadgroup coalesces concurrent loads for the same key into a
// single call to the caller's loader function, built on
// golang.org/x/sync/singleflight, and adds deadline/cancellation support the
// bare singleflight.Group does not provide.
package loadgroup

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Coordinator ensures at most one in-flight load per key across all callers,
// regardless of how many goroutines request the same key concurrently; late
// arrivals share the first caller's result instead of each invoking loader.
type Coordinator[V any] struct {
	group singleflight.Group
}

// New returns an empty Coordinator.
func New[V any]() *Coordinator[V] {
	return &Coordinator[V]{}
}

// Result carries a load's outcome plus singleflight's shared flag: Shared is
// true when the loader's result was handed to more than one caller, for
// every one of those callers including the one that executed loader. It is
// false when ctx ended before the result arrived.
type Result[V any] struct {
	Value  V
	Shared bool
	Err    error
}

// Load runs loader for key, coalescing with any load already in flight for
// the same key. If ctx is cancelled or its deadline elapses before the
// shared call completes, Load returns ctx.Err() immediately; the shared call
// itself keeps running to completion for the benefit of any other waiter,
// since aborting it for one cancelled caller would strand the rest.
func (c *Coordinator[V]) Load(ctx context.Context, key string, loader func(context.Context) (V, error)) Result[V] {
	resCh := c.group.DoChan(key, func() (interface{}, error) {
		return loader(context.Background())
	})

	select {
	case res := <-resCh:
		value, _ := res.Val.(V)
		return Result[V]{Value: value, Shared: res.Shared, Err: res.Err}
	case <-ctx.Done():
		var zero V
		return Result[V]{Value: zero, Err: ctx.Err()}
	}
}

// Forget drops the in-flight call recorded for key, so the next Load for key
// invokes loader anew instead of joining a call that is still running;
// callers already waiting on that call still receive its result.
func (c *Coordinator[V]) Forget(key string) {
	c.group.Forget(key)
}
