package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps encoded records in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
	now  Clock
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, NotFound(id)
	}
	return Unmarshal(data)
}

func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored *Record
	if rec != nil && rec.ID != "" {
		if data, ok := s.docs[rec.ID]; ok {
			var err error
			if stored, err = Unmarshal(data); err != nil {
				return err
			}
		}
	}
	next, err := Prepare(rec, stored, s.now())
	if err != nil {
		return err
	}
	data, err := Marshal(next)
	if err != nil {
		return err
	}
	s.docs[next.ID] = data
	*rec = *next
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return NotFound(id)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.docs))
	for _, data := range s.docs {
		rec, err := Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Summarize())
	}
	SortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// SetClock replaces the time source.
func (s *MemoryStore) SetClock(c Clock) { s.now = c }

var _ Store = (*MemoryStore)(nil)
