package docqa

import (
	"testing"
	"time"
)

func TestMemSessionStoreLifecycle(t *testing.T) {
	store := NewMemSessionStore()

	s := store.Create()
	if s.ID == "" {
		t.Fatal("session id should not be empty")
	}
	got, ok := store.Get(s.ID)
	if !ok || got.ID != s.ID {
		t.Fatalf("Get(%s) = %v, %v", s.ID, got, ok)
	}

	if !store.AddMessage(s.ID, ChatMessage{Role: "user", Content: "hello", Timestamp: time.Now()}) {
		t.Fatal("AddMessage failed for existing session")
	}
	got, _ = store.Get(s.ID)
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Errorf("messages = %+v", got.Messages)
	}

	if store.AddMessage("missing", ChatMessage{Role: "user", Content: "x"}) {
		t.Error("AddMessage should fail for unknown session")
	}

	if !store.Delete(s.ID) {
		t.Error("Delete should succeed for existing session")
	}
	if store.Delete(s.ID) {
		t.Error("Delete should fail the second time")
	}
}

func TestMemSessionStoreListRange(t *testing.T) {
	store := NewMemSessionStore()
	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		s := store.Create()
		// force distinct creation times for a stable recency order
		s.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		ids = append(ids, s.ID)
	}

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("List = %d sessions", len(list))
	}
	if list[0].ID != ids[2] {
		t.Errorf("newest first: got %s, want %s", list[0].ID, ids[2])
	}

	page := store.ListRange(1, 1)
	if len(page) != 1 || page[0].ID != ids[1] {
		t.Errorf("ListRange(1,1) = %+v", page)
	}
	if got := store.ListRange(5, 10); len(got) != 0 {
		t.Errorf("out of range page should be empty, got %d", len(got))
	}
	if got := store.ListRange(0, 0); len(got) != 0 {
		t.Errorf("zero limit should be empty, got %d", len(got))
	}
}

func TestMemSessionStoreClean(t *testing.T) {
	store := NewMemSessionStore()
	for i := 0; i < 5; i++ {
		s := store.Create()
		s.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
	}
	if err := store.Clean(2); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if got := len(store.List()); got != 2 {
		t.Errorf("after Clean(2): %d sessions", got)
	}
}

func TestSessionLastTurns(t *testing.T) {
	s := &Session{Messages: []ChatMessage{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
		{Role: "user", Content: "c"},
	}}
	if got := s.LastTurns(2); len(got) != 2 || got[0].Content != "b" {
		t.Errorf("LastTurns(2) = %+v", got)
	}
	if got := s.LastTurns(10); len(got) != 3 {
		t.Errorf("LastTurns(10) = %+v", got)
	}
	if got := s.LastTurns(0); got != nil {
		t.Errorf("LastTurns(0) = %+v", got)
	}
}
