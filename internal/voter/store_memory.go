package voter

import (
	"context"
	"sync"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
)

// InMemoryStore keeps the voter collection in a slice guarded by one RWMutex.
// Create runs the duplicate detector inside the write lock, which is what
// makes check-then-insert atomic here.
type InMemoryStore struct {
	mu     sync.RWMutex
	voters []Voter
	byID   map[id.VoterID]int
	byNo   map[id.VoterNo]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID: make(map[id.VoterID]int),
		byNo: make(map[id.VoterNo]int),
	}
}

func (s *InMemoryStore) Create(_ context.Context, voter *Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byNo[voter.No]; taken {
		return sentinel.ErrAlreadyUsed
	}

	candidate := Candidate{
		Name:  voter.Name,
		DOB:   voter.DOB,
		Phone: voter.Phone,
		Face:  voter.Face,
	}
	if collision := DetectCollision(candidate, s.voters); collision != nil {
		return &CollisionError{Collision: *collision}
	}

	s.voters = append(s.voters, *voter)
	s.byID[voter.ID] = len(s.voters) - 1
	s.byNo[voter.No] = len(s.voters) - 1
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, voterID id.VoterID) (*Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[voterID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	v := s.voters[idx]
	return &v, nil
}

func (s *InMemoryStore) FindByNo(_ context.Context, no id.VoterNo) (*Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byNo[no]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	v := s.voters[idx]
	return &v, nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, no id.VoterNo, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byNo[no]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.voters[idx].Status = status
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.voters), nil
}
