package trace

import (
	"container/list"
	"sync"
	"time"

	"docqa/schema"
)

// Store keeps recent run traces for debugging, bounded by capacity and TTL.
// Oldest runs are evicted first.
type Store struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*entry
	order    *list.List
}

type entry struct {
	trace   *schema.RunTrace
	expires time.Time
	element *list.Element
}

// NewStore creates a trace store with capacity and TTL.
func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry, capacity),
		order:    list.New(),
	}
}

// Put records a finished run.
func (s *Store) Put(t *schema.RunTrace) {
	if t == nil || t.RunID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.items[t.RunID]; ok {
		ent.trace = t
		ent.expires = time.Now().Add(s.ttl)
		s.order.MoveToFront(ent.element)
		return
	}
	if len(s.items) >= s.capacity {
		s.evictOldest()
	}
	elem := s.order.PushFront(t.RunID)
	s.items[t.RunID] = &entry{
		trace:   t,
		expires: time.Now().Add(s.ttl),
		element: elem,
	}
}

// Get returns the trace for a run ID if it is still live.
func (s *Store) Get(runID string) (*schema.RunTrace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.items[runID]
	if !ok {
		return nil, false
	}
	if time.Now().After(ent.expires) {
		s.removeEntry(runID, ent)
		return nil, false
	}
	return ent.trace, true
}

// Recent returns up to n live traces, newest first.
func (s *Store) Recent(n int) []*schema.RunTrace {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return nil
	}
	now := time.Now()
	out := make([]*schema.RunTrace, 0, n)
	for elem := s.order.Front(); elem != nil && len(out) < n; elem = elem.Next() {
		id := elem.Value.(string)
		ent, ok := s.items[id]
		if !ok {
			continue
		}
		if now.After(ent.expires) {
			continue
		}
		out = append(out, ent.trace)
	}
	return out
}

func (s *Store) evictOldest() {
	elem := s.order.Back()
	if elem == nil {
		return
	}
	id := elem.Value.(string)
	if ent, ok := s.items[id]; ok {
		s.removeEntry(id, ent)
	}
}

func (s *Store) removeEntry(id string, ent *entry) {
	if ent.element != nil {
		s.order.Remove(ent.element)
	}
	delete(s.items, id)
}
