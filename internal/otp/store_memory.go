package otp

import (
	"context"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// InMemoryStore keeps challenges in a map. Suitable for single-process
// deployments and tests; distributed deployments use the Redis store.
type InMemoryStore struct {
	mu         sync.RWMutex
	challenges map[id.Phone]Challenge
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{challenges: make(map[id.Phone]Challenge)}
}

func (s *InMemoryStore) Put(_ context.Context, challenge Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.Phone] = challenge
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, phone id.Phone) (Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[phone]
	if !ok {
		return Challenge{}, sentinel.ErrNotFound
	}
	return challenge, nil
}

func (s *InMemoryStore) Delete(_ context.Context, phone id.Phone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, phone)
	return nil
}
