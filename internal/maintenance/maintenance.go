// Package maintenance runs the single cooperative background worker that
// drains access-event ring buffers into the eviction policy, ages the
// frequency sketch, sweeps expired entries, and fires due refreshes. This
// work all runs on one goroutine; it is not the only writer of policy
// state, since the cache's Put and Remove paths also update the policy.
package maintenance

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Clock abstracts wall-clock access so tests can drive maintenance without
// real sleeps. The root package's TimeProvider (backed by go-timecache)
// satisfies this structurally — same Now() int64 method, no adapter needed.
type Clock interface {
	Now() int64
}

// Tasks bundles the per-tick work the engine wants performed. Every field is
// required; Runner does not special-case a nil task.
type Tasks struct {
	DrainEvents  func(now int64)
	AgeSketch    func()
	SweepExpired func(now int64)
	FireRefresh  func(now int64)
}

// Runner drives Tasks on a fixed interval from one goroutine, started by Run
// and stopped by cancelling the context passed to it.
type Runner struct {
	clock         Clock
	tasks         Tasks
	interval      atomic.Duration

	wakeup chan struct{}

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// New builds a Runner. interval is the steady-state tick period; Wake can
// additionally trigger an out-of-band tick (e.g. right after a hot reload
// changed a setting, so it takes effect before the next interval).
func New(clock Clock, tasks Tasks, interval time.Duration) *Runner {
	r := &Runner{
		clock:  clock,
		tasks:  tasks,
		wakeup: make(chan struct{}, 1),
	}
	r.interval.Store(interval)
	return r
}

// SetInterval changes the steady-state tick period, taking effect on the
// next tick the loop schedules (the in-flight ticker is not reset
// immediately; call Wake for an out-of-band tick if the new interval needs
// to apply sooner).
func (r *Runner) SetInterval(interval time.Duration) {
	r.interval.Store(interval)
}

// Run starts the maintenance loop and blocks until ctx is cancelled. It is
// meant to be launched with `go runner.Run(ctx)`.
func (r *Runner) Run(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()
	defer close(r.done)

	current := r.interval.Load()
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			return
		case <-ticker.C:
			r.tick()
			if next := r.interval.Load(); next != current {
				current = next
				ticker.Reset(current)
			}
		case <-r.wakeup:
			r.tick()
			if next := r.interval.Load(); next != current {
				current = next
				ticker.Reset(current)
			}
		}
	}
}

func (r *Runner) tick() {
	now := r.clock.Now()
	r.tasks.DrainEvents(now)
	r.tasks.AgeSketch()
	r.tasks.SweepExpired(now)
	r.tasks.FireRefresh(now)
}

// Wake requests an out-of-band tick as soon as the runner is free to take
// one. Non-blocking: if a wake is already pending, this is a no-op.
func (r *Runner) Wake() {
	select {
	case r.wakeup <- struct{}{}:
	default:
	}
}

// RunOnce executes a single tick synchronously, used by tests and by Close
// to guarantee a final drain without waiting on the ticker.
func (r *Runner) RunOnce() {
	r.tick()
}
