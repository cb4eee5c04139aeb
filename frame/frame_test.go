package frame

import (
	"testing"
	"time"
)

func TestStamp_Next(t *testing.T) {
	now := time.Now()

	var s Stamp
	for want := uint64(1); want <= 5; want++ {
		s = s.Next(now)
		if s.Count != want {
			t.Fatalf("Count = %d, want %d", s.Count, want)
		}
		if !s.Time.Equal(now) {
			t.Fatalf("Time = %v, want %v", s.Time, now)
		}
	}
}

func TestStamp_ZeroValueIsBeforeFirstFrame(t *testing.T) {
	var s Stamp
	if s.Count != 0 {
		t.Fatalf("zero stamp Count = %d, want 0", s.Count)
	}

	first := s.Next(time.Now())
	if first.Count != 1 {
		t.Fatalf("first frame Count = %d, want 1", first.Count)
	}
}

func TestEvent_When(t *testing.T) {
	now := time.Now()
	e := Event{Stamp: Stamp{Time: now, Count: 3}}
	if !e.When().Equal(now) {
		t.Fatalf("When() = %v, want %v", e.When(), now)
	}
}
