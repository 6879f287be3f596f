package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store using a map. Records are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Record)}
}

func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.data {
		if rec.State.Terminal() && rec.UpdatedAt.Before(cutoff) {
			delete(s.data, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.data = make(map[string]Record)
	s.mu.Unlock()
	return nil
}
