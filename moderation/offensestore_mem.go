package moderation

import (
	"context"
	"sync"
)

type MemOffenseStore struct {
	mu   sync.Mutex
	data map[string]OffenseState
}

func NewMemOffenseStore() *MemOffenseStore {
	return &MemOffenseStore{
		data: make(map[string]OffenseState),
	}
}

func (s *MemOffenseStore) Get(ctx context.Context, userID string) (*OffenseState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[userID]
	if !ok {
		return &OffenseState{}, nil
	}
	return &st, nil
}

func (s *MemOffenseStore) Set(ctx context.Context, userID string, state *OffenseState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = *state
	return nil
}
