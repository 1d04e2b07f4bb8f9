package trace

import (
	"fmt"
	"testing"
	"time"

	"docqa/schema"
)

func tr(id string) *schema.RunTrace {
	return &schema.RunTrace{RunID: id, Question: "q-" + id, StartedAt: time.Now()}
}

func TestStorePutGet(t *testing.T) {
	s := NewStore(4, time.Minute)
	s.Put(tr("run-1"))

	got, ok := s.Get("run-1")
	if !ok || got.Question != "q-run-1" {
		t.Fatalf("Get(run-1) = %v, %v", got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown run id")
	}
}

func TestStoreCapacityEvictsOldest(t *testing.T) {
	s := NewStore(2, time.Minute)
	s.Put(tr("a"))
	s.Put(tr("b"))
	s.Put(tr("c"))

	if _, ok := s.Get("a"); ok {
		t.Error("oldest trace should have been evicted")
	}
	if _, ok := s.Get("b"); !ok {
		t.Error("trace b should still be present")
	}
	if _, ok := s.Get("c"); !ok {
		t.Error("trace c should still be present")
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	s := NewStore(4, 10*time.Millisecond)
	s.Put(tr("a"))
	time.Sleep(25 * time.Millisecond)

	if _, ok := s.Get("a"); ok {
		t.Error("expired trace should not be returned")
	}
	if got := s.Recent(10); len(got) != 0 {
		t.Errorf("Recent should skip expired traces, got %d", len(got))
	}
}

func TestStoreRecentNewestFirst(t *testing.T) {
	s := NewStore(8, time.Minute)
	for i := 0; i < 5; i++ {
		s.Put(tr(fmt.Sprintf("run-%d", i)))
	}

	got := s.Recent(3)
	if len(got) != 3 {
		t.Fatalf("Recent(3) returned %d traces", len(got))
	}
	for i, want := range []string{"run-4", "run-3", "run-2"} {
		if got[i].RunID != want {
			t.Errorf("Recent[%d] = %s, want %s", i, got[i].RunID, want)
		}
	}
}

func TestStorePutSameIDUpdates(t *testing.T) {
	s := NewStore(2, time.Minute)
	s.Put(tr("a"))
	updated := tr("a")
	updated.Question = "updated"
	s.Put(updated)

	got, ok := s.Get("a")
	if !ok || got.Question != "updated" {
		t.Fatalf("expected updated trace, got %v, %v", got, ok)
	}
}
