package expiry

import (
	"testing"

	"github.com/ashgrove-cache/tinylfu/internal/store"
)

func TestExpiredAfterWrite(t *testing.T) {
	p := Policy{AfterWrite: 100}
	e := &store.Entry[int]{CreatedNanos: 0, AccessNanos: 0}

	if Expired(p, e, 99) {
		t.Fatalf("should not be expired one nanosecond early")
	}
	if !Expired(p, e, 100) {
		t.Fatalf("should be expired exactly at the deadline")
	}
}

func TestExpiredAfterAccessResetsOnTouch(t *testing.T) {
	p := Policy{AfterAccess: 50}
	e := &store.Entry[int]{CreatedNanos: 0, AccessNanos: 1000}

	if Expired(p, e, 1049) {
		t.Fatalf("should not be expired before the access-based deadline")
	}
	if !Expired(p, e, 1050) {
		t.Fatalf("should be expired at the access-based deadline")
	}
}

func TestPolicyDisabledNeverExpires(t *testing.T) {
	p := Policy{}
	e := &store.Entry[int]{CreatedNanos: 0}
	if Expired(p, e, 1<<40) {
		t.Fatalf("a zero-value policy must never expire anything")
	}
	if p.Enabled() {
		t.Fatalf("zero-value policy should report disabled")
	}
}

func TestSweepFindsOnlyExpired(t *testing.T) {
	s := store.New[int, int](4)
	s.Put(1, 1, &store.Entry[int]{CreatedNanos: 0})
	s.Put(2, 2, &store.Entry[int]{CreatedNanos: 1000})

	p := Policy{AfterWrite: 100}
	found := Sweep(s, p, 200, func(k int) uint64 { return uint64(k) })

	if len(found) != 1 || found[0].Key != 1 {
		t.Fatalf("expected only key 1 to be swept, got %+v", found)
	}
}

func TestSweepCapsBatchSize(t *testing.T) {
	s := store.New[int, int](8)
	for i := 0; i < maxSweepBatch+50; i++ {
		s.Put(i, uint64(i), &store.Entry[int]{CreatedNanos: 0})
	}
	p := Policy{AfterWrite: 1}
	found := Sweep(s, p, 1000, func(k int) uint64 { return uint64(k) })
	if len(found) != maxSweepBatch {
		t.Fatalf("expected sweep to cap at %d, got %d", maxSweepBatch, len(found))
	}
}
