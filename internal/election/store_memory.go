package election

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// InMemoryStore keeps elections in a map. Election counts are tiny (one
// cycle), so a map plus a sorted List is all this needs.
type InMemoryStore struct {
	mu        sync.RWMutex
	elections map[id.ElectionID]*Election
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{elections: make(map[id.ElectionID]*Election)}
}

func (s *InMemoryStore) FindByID(_ context.Context, electionID id.ElectionID) (*Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elections[electionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *e
	clone.Candidates = append([]Candidate(nil), e.Candidates...)
	return &clone, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Election, 0, len(s.elections))
	for _, e := range s.elections {
		clone := *e
		clone.Candidates = append([]Candidate(nil), e.Candidates...)
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *InMemoryStore) Put(_ context.Context, election *Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *election
	clone.Candidates = append([]Candidate(nil), election.Candidates...)
	s.elections[election.ID] = &clone
	return nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, electionID id.ElectionID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[electionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	e.Status = status
	return nil
}

// LoadSeed populates the store from a JSON file containing an array of
// elections. Used at startup so a fresh deployment has something to vote in.
func (s *InMemoryStore) LoadSeed(ctx context.Context, path string) (int, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read election seed: %w", err)
	}
	var elections []*Election
	if err := json.Unmarshal(payload, &elections); err != nil {
		return 0, fmt.Errorf("parse election seed: %w", err)
	}
	for _, e := range elections {
		if err := s.Put(ctx, e); err != nil {
			return 0, err
		}
	}
	return len(elections), nil
}
