package brainstorm

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRegistryGetOrCreate(t *testing.T) {
	r := NewSessionRegistry()

	s1 := r.GetOrCreate("u1")
	if s1 == nil || s1.Status != StatusReady {
		t.Fatalf("GetOrCreate returned %+v, want a Ready session", s1)
	}
	if s2 := r.GetOrCreate("u1"); s2 != s1 {
		t.Error("second GetOrCreate must return the same session")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryIsolationBetweenUsers(t *testing.T) {
	r := NewSessionRegistry()
	now := time.Now()

	a := r.GetOrCreate("alice")
	b := r.GetOrCreate("bob")

	a.RecordIdea("alice's idea", now)
	if b.InitialIdea != "" {
		t.Error("one user's idea leaked into another session")
	}
	if b.Status != StatusReady {
		t.Errorf("bob Status = %q, want %q", b.Status, StatusReady)
	}
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := NewSessionRegistry()
	r.GetOrCreate("u1")

	r.Remove("u1")
	if r.Exists("u1") {
		t.Fatal("session should be gone after Remove")
	}
	r.Remove("u1") // no-op
	r.Remove("never-existed")

	// A new session after removal starts from scratch.
	if s := r.GetOrCreate("u1"); s.Status != StatusReady {
		t.Errorf("recreated session Status = %q, want %q", s.Status, StatusReady)
	}
}

func TestRegistryAcquireSerializesPerUser(t *testing.T) {
	r := NewSessionRegistry()
	now := time.Now()

	const turns = 100
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, release := r.Acquire("u1")
			defer release()
			// Unsynchronized read-modify-write on the session; the turn
			// lock is what keeps this correct.
			s.RecordQuestion(CategoryOpenEnded, "q", now)
		}()
	}
	wg.Wait()

	s := r.GetOrCreate("u1")
	if s.QuestionsAsked != turns {
		t.Errorf("QuestionsAsked = %d, want %d", s.QuestionsAsked, turns)
	}
	if len(s.QuestionLog) != turns {
		t.Errorf("len(QuestionLog) = %d, want %d", len(s.QuestionLog), turns)
	}
}

func TestRegistryCrossUserConcurrency(t *testing.T) {
	r := NewSessionRegistry()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", n)
			for j := 0; j < 20; j++ {
				s, release := r.Acquire(userID)
				s.RecordResponse("a", now)
				release()
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 10 {
		t.Fatalf("Len = %d, want 10", r.Len())
	}
	for i := 0; i < 10; i++ {
		s := r.GetOrCreate(fmt.Sprintf("user-%d", i))
		if len(s.ResponseLog) != 20 {
			t.Errorf("user-%d ResponseLog = %d entries, want 20", i, len(s.ResponseLog))
		}
	}
}

func TestRegistrySweepIdle(t *testing.T) {
	r := NewSessionRegistry()
	now := time.Now()

	stale := r.GetOrCreate("stale")
	stale.LastActivity = now.Add(-2 * time.Hour)
	fresh := r.GetOrCreate("fresh")
	fresh.LastActivity = now

	evicted := r.SweepIdle(time.Hour)
	if evicted != 1 {
		t.Fatalf("SweepIdle evicted %d, want 1", evicted)
	}
	if r.Exists("stale") {
		t.Error("stale session should be evicted")
	}
	if !r.Exists("fresh") {
		t.Error("fresh session should survive")
	}

	if r.SweepIdle(0) != 0 {
		t.Error("zero TTL must disable sweeping")
	}
}
