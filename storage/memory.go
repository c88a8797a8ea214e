package storage

import (
	"context"
	"sync"

	"github.com/jakub-k-slys/timetable"
)

// MemoryStore is an in-memory StateStore for tests and single-process use
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]timetable.State
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]timetable.State),
	}
}

func (s *MemoryStore) LoadState(ctx context.Context, scheduleID string) (*timetable.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[scheduleID]
	if !ok {
		return nil, nil
	}
	copied := state
	return &copied, nil
}

func (s *MemoryStore) SaveState(ctx context.Context, scheduleID string, state *timetable.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[scheduleID] = *state
	return nil
}

func (s *MemoryStore) DeleteState(ctx context.Context, scheduleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, scheduleID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
