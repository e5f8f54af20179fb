package ballot

import (
	"context"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// InMemoryStore indexes votes by (election, voter) under one mutex, so the
// existence check and the append in AppendIfFirst cannot interleave.
type InMemoryStore struct {
	mu    sync.RWMutex
	votes map[id.ElectionID]map[id.VoterID]Vote
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{votes: make(map[id.ElectionID]map[id.VoterID]Vote)}
}

func (s *InMemoryStore) AppendIfFirst(_ context.Context, vote Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byVoter, ok := s.votes[vote.ElectionID]
	if !ok {
		byVoter = make(map[id.VoterID]Vote)
		s.votes[vote.ElectionID] = byVoter
	}
	if _, voted := byVoter[vote.VoterID]; voted {
		return sentinel.ErrAlreadyUsed
	}
	byVoter[vote.VoterID] = vote
	return nil
}

func (s *InMemoryStore) HasVoted(_ context.Context, electionID id.ElectionID, voterID id.VoterID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, voted := s.votes[electionID][voterID]
	return voted, nil
}

func (s *InMemoryStore) CountByCandidate(_ context.Context, electionID id.ElectionID) (map[id.CandidateID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[id.CandidateID]int)
	for _, vote := range s.votes[electionID] {
		counts[vote.CandidateID]++
	}
	return counts, nil
}
