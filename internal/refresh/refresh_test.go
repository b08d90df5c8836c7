package refresh

import "testing"

func TestDrainDueReturnsEarliestFirst(t *testing.T) {
	s := New[string]()
	s.Schedule("c", 3, 300, 1)
	s.Schedule("a", 1, 100, 1)
	s.Schedule("b", 2, 200, 1)

	due := s.DrainDue(250)
	if len(due) != 2 {
		t.Fatalf("expected 2 due schedules at t=250, got %d", len(due))
	}
	if due[0].Key != "a" || due[1].Key != "b" {
		t.Fatalf("expected earliest-first order a,b, got %v,%v", due[0].Key, due[1].Key)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 schedule remaining, got %d", s.Len())
	}
}

func TestScheduleTwiceKeepsNewest(t *testing.T) {
	s := New[string]()
	s.Schedule("a", 1, 100, 1)
	s.Schedule("a", 1, 500, 2)

	if s.Len() != 1 {
		t.Fatalf("expected rescheduling to replace, not duplicate, got len=%d", s.Len())
	}
	if due := s.DrainDue(100); len(due) != 0 {
		t.Fatalf("expected no schedule due at the old deadline, got %v", due)
	}
	due := s.DrainDue(500)
	if len(due) != 1 || due[0].Version != 2 {
		t.Fatalf("expected the rescheduled version to survive, got %v", due)
	}
}

func TestCancelRemovesSchedule(t *testing.T) {
	s := New[string]()
	s.Schedule("a", 1, 100, 1)
	s.Cancel("a")

	if s.Len() != 0 {
		t.Fatalf("expected cancel to remove the schedule, got len=%d", s.Len())
	}
	if due := s.DrainDue(1000); len(due) != 0 {
		t.Fatalf("expected nothing due after cancel, got %v", due)
	}
}

func TestDrainDueCapsBatch(t *testing.T) {
	s := New[int]()
	for i := 0; i < maxDrainBatch+10; i++ {
		s.Schedule(i, uint64(i), int64(i), 1)
	}
	due := s.DrainDue(int64(maxDrainBatch + 100))
	if len(due) != maxDrainBatch {
		t.Fatalf("expected drain to cap at %d, got %d", maxDrainBatch, len(due))
	}
}
