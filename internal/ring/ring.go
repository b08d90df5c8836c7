// Package ring implements the striped, bounded access-event queues that let
// reads record policy-relevant events (hits, in particular) without taking
// any lock shared with the eviction policy. A single maintenance goroutine
// later drains these buffers and applies the events to the policy; producers
// never block and silently drop events on overflow.
package ring

import (
	"sync"
	"sync/atomic"
	"unsafe"

	uberatomic "go.uber.org/atomic"
)

// DrainStatus coordinates a single buffer between producers and the one
// drainer allowed to run at a time.
type DrainStatus int32

const (
	Idle DrainStatus = iota
	Required
	Processing
)

// Buffer is a bounded queue of access events. Capacity must be a power of
// two. Multiple producers may call Offer concurrently (striping makes this
// the common case); only one goroutine may call Drain at a time, enforced by
// the embedded DrainStatus.
type Buffer[T any] struct {
	mask  uint64
	slots []slotBox[T]

	writeSeq uberatomic.Uint64
	readSeq  uberatomic.Uint64
	status   uberatomic.Int32
}

type slotBox[T any] struct {
	ready uberatomic.Bool
	value T
}

// NewBuffer allocates a buffer of the given power-of-two capacity.
func NewBuffer[T any](capacity int) *Buffer[T] {
	capacity = nextPowerOf2(capacity)
	return &Buffer[T]{
		mask:  uint64(capacity - 1),
		slots: make([]slotBox[T], capacity),
	}
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

// Offer attempts to append value, returning false if the buffer is full.
// Non-blocking: it never waits, and retries only when a concurrent producer
// wins the compare-and-swap for the same slot.
func (b *Buffer[T]) Offer(value T) bool {
	capacity := b.mask + 1
	for {
		tail := b.writeSeq.Load()
		head := b.readSeq.Load()
		if tail-head >= capacity {
			return false
		}
		if b.writeSeq.CompareAndSwap(tail, tail+1) {
			slot := &b.slots[tail&b.mask]
			slot.value = value
			slot.ready.Store(true)
			b.status.CompareAndSwap(int32(Idle), int32(Required))
			return true
		}
	}
}

// NeedsDraining reports whether this buffer has been marked for drain.
func (b *Buffer[T]) NeedsDraining() bool {
	return DrainStatus(b.status.Load()) == Required
}

// Drain applies consumer to every currently visible element in FIFO slot
// order and advances the read cursor past them, returning the count
// processed. Only one drain runs at a time; concurrent callers return 0
// immediately.
func (b *Buffer[T]) Drain(consumer func(T)) int {
	if !b.status.CompareAndSwap(int32(Idle), int32(Processing)) &&
		!b.status.CompareAndSwap(int32(Required), int32(Processing)) {
		return 0
	}
	defer b.status.Store(int32(Idle))

	head := b.readSeq.Load()
	tail := b.writeSeq.Load()
	n := uint64(0)
	for head+n < tail {
		slot := &b.slots[(head+n)&b.mask]
		if !slot.ready.Load() {
			break // producer claimed the slot but hasn't published yet
		}
		consumer(slot.value)
		slot.ready.Store(false)
		n++
	}
	b.readSeq.Store(head + n)
	return int(n)
}

// stripeIdentity approximates a per-goroutine affinity token so that calls
// from the same goroutine tend to land on the same stripe, spreading
// contention across producers without a true thread-local.
func stripeIdentity() uint64 {
	var local byte
	h := uint64(uintptr(unsafe.Pointer(&local)))
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

// Striped fans a single logical queue out across multiple Buffers indexed by
// stripeIdentity, doubling the stripe count under contention up to maxStripes.
type Striped[T any] struct {
	stripes      atomic.Pointer[[]*Buffer[T]]
	mask         uberatomic.Uint64
	contention   uberatomic.Uint64
	bufferCap    int
	maxStripes   int
	expandMu     sync.Mutex
}

// NewStriped creates a striped buffer starting at one stripe.
func NewStriped[T any](bufferCapacity, maxStripes int) *Striped[T] {
	s := &Striped[T]{
		bufferCap:  bufferCapacity,
		maxStripes: maxStripes,
	}
	initial := []*Buffer[T]{NewBuffer[T](bufferCapacity)}
	s.stripes.Store(&initial)
	s.mask.Store(0)
	return s
}

// Record offers value to a stripe chosen by the caller's identity, expanding
// the stripe count if contention warrants it. Returns false if the event was
// dropped (overflow); loss only degrades policy accuracy.
func (s *Striped[T]) Record(value T) bool {
	stripes := *s.stripes.Load()
	idx := stripeIdentity() & s.mask.Load()
	if stripes[idx].Offer(value) {
		return true
	}
	s.onContention(len(stripes))
	return false
}

func (s *Striped[T]) onContention(currentCount int) {
	c := s.contention.Inc()
	if currentCount >= s.maxStripes {
		return
	}
	// Expand once contention reaches twice the current stripe count; the
	// counter is reset after a successful expansion below.
	if int(c) < currentCount*2 {
		return
	}
	s.tryExpand(currentCount)
}

func (s *Striped[T]) tryExpand(observedCount int) {
	s.expandMu.Lock()
	defer s.expandMu.Unlock()

	current := *s.stripes.Load()
	if len(current) != observedCount || len(current) >= s.maxStripes {
		return // another goroutine already expanded, or we hit the cap
	}

	newCount := len(current) * 2
	if newCount > s.maxStripes {
		newCount = s.maxStripes
	}
	next := make([]*Buffer[T], newCount)
	copy(next, current)
	for i := len(current); i < newCount; i++ {
		next[i] = NewBuffer[T](s.bufferCap)
	}

	s.stripes.Store(&next)
	s.mask.Store(uint64(newCount - 1))
	s.contention.Store(0)
}

// NeedsDraining reports whether any stripe currently holds undrained events.
func (s *Striped[T]) NeedsDraining() bool {
	for _, buf := range *s.stripes.Load() {
		if buf.NeedsDraining() {
			return true
		}
	}
	return false
}

// DrainAll drains every stripe, applying consumer to each event in
// per-stripe FIFO order. There is no ordering guarantee across stripes.
// Returns the total number of events processed.
func (s *Striped[T]) DrainAll(consumer func(T)) int {
	total := 0
	for _, buf := range *s.stripes.Load() {
		total += buf.Drain(consumer)
	}
	return total
}

// StripeCount reports the current number of stripes (for tests/metrics).
func (s *Striped[T]) StripeCount() int {
	return len(*s.stripes.Load())
}
