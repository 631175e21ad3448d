// Package memstore provides a non-persistent FactStore for local dev
// and tests.
package memstore

import (
	"context"
	"fmt"
	"sync"
)

type fact struct {
	content  string
	kind     string
	metadata string
}

type FactStore struct {
	mu        sync.RWMutex
	entities  map[string]int64
	processes map[string]int64
	facts     map[int64][]fact // insertion order, oldest first
	nextID    int64
}

func NewFactStore() *FactStore {
	return &FactStore{
		entities:  make(map[string]int64),
		processes: make(map[string]int64),
		facts:     make(map[int64][]fact),
		nextID:    1,
	}
}

func (s *FactStore) EnsureEntity(_ context.Context, externalID string) (int64, error) {
	return s.ensure(s.entities, externalID)
}

func (s *FactStore) EnsureProcess(_ context.Context, externalID string) (int64, error) {
	return s.ensure(s.processes, externalID)
}

func (s *FactStore) ensure(m map[string]int64, externalID string) (int64, error) {
	if externalID == "" {
		return 0, fmt.Errorf("external id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := m[externalID]; ok {
		return id, nil
	}
	id := s.nextID
	s.nextID++
	m[externalID] = id
	return id, nil
}

// RecentFacts returns up to limit facts, most recent first.
func (s *FactStore) RecentFacts(_ context.Context, entityID int64, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.facts[entityID]
	out := make([]string, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i].content)
	}
	return out, nil
}

func (s *FactStore) InsertFact(_ context.Context, entityID, _ int64, content, kind, metadata string) error {
	if content == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.facts[entityID] = append(s.facts[entityID], fact{
		content:  content,
		kind:     kind,
		metadata: metadata,
	})
	return nil
}

func (s *FactStore) Close() error {
	return nil
}
