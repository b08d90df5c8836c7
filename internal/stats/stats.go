// Package stats accumulates the cache's operational counters behind a
// narrow interface, so recording stats and disabling them entirely (the
// common production choice under heavy load) share one call site in the
// engine.
package stats

import "go.uber.org/atomic"

// Recorder receives cache events. Every method must be safe to call from
// any number of concurrent goroutines without further synchronization.
type Recorder interface {
	RecordHit()
	RecordMiss()
	RecordLoadSuccess(durationNanos int64)
	RecordLoadFailure(durationNanos int64)
	RecordEviction()
	Snapshot() Snapshot
}

// Snapshot is a point-in-time, internally consistent-enough view of the
// counters (each field is read independently, so under concurrent updates
// the fields may not correspond to exactly the same instant).
type Snapshot struct {
	Hits            uint64
	Misses          uint64
	LoadSuccesses   uint64
	LoadFailures    uint64
	Evictions       uint64
	LoadTimeNanos   uint64
}

// HitRate returns Hits/(Hits+Misses), or 0 if there have been no requests.
func (s Snapshot) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// counting is the default Recorder, backed by lock-free atomics.
type counting struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	loadSuccesses atomic.Uint64
	loadFailures  atomic.Uint64
	evictions     atomic.Uint64
	loadTimeNanos atomic.Uint64
}

// New returns a Recorder that actually counts.
func New() Recorder {
	return &counting{}
}

func (c *counting) RecordHit()  { c.hits.Inc() }
func (c *counting) RecordMiss() { c.misses.Inc() }

func (c *counting) RecordLoadSuccess(durationNanos int64) {
	c.loadSuccesses.Inc()
	c.loadTimeNanos.Add(uint64(durationNanos))
}

func (c *counting) RecordLoadFailure(durationNanos int64) {
	c.loadFailures.Inc()
	c.loadTimeNanos.Add(uint64(durationNanos))
}

func (c *counting) RecordEviction() { c.evictions.Inc() }

func (c *counting) Snapshot() Snapshot {
	return Snapshot{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		LoadSuccesses: c.loadSuccesses.Load(),
		LoadFailures:  c.loadFailures.Load(),
		Evictions:     c.evictions.Load(),
		LoadTimeNanos: c.loadTimeNanos.Load(),
	}
}

// noop discards every event; used when RecordStats is disabled so the
// engine still has a Recorder to call without branching on every access.
type noop struct{}

// NewNoop returns a Recorder that discards everything and always reports a
// zero Snapshot.
func NewNoop() Recorder { return noop{} }

func (noop) RecordHit()                            {}
func (noop) RecordMiss()                           {}
func (noop) RecordLoadSuccess(durationNanos int64) {}
func (noop) RecordLoadFailure(durationNanos int64) {}
func (noop) RecordEviction()                       {}
func (noop) Snapshot() Snapshot                    { return Snapshot{} }
