package ballot

import (
	"context"

	id "votegate/pkg/domain"
)

// Store persists votes.
//
// AppendIfFirst is the safety-critical operation: it records the vote only if
// no vote exists for the same (election, voter) pair, atomically. It returns
// sentinel.ErrAlreadyUsed when the pair has already voted.
type Store interface {
	AppendIfFirst(ctx context.Context, vote Vote) error
	HasVoted(ctx context.Context, electionID id.ElectionID, voterID id.VoterID) (bool, error)
	CountByCandidate(ctx context.Context, electionID id.ElectionID) (map[id.CandidateID]int, error)
}
