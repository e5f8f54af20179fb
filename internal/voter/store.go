package voter

import (
	"context"

	id "votegate/pkg/domain"
)

// Store persists voter identities.
//
// Create is the single admission point and MUST be atomic: the duplicate
// detection and the insert happen under one lock (memory) or one
// serializable transaction (postgres), so two concurrent registrations can
// never both pass the check. Create returns:
//   - *CollisionError when the duplicate detector finds a match
//   - sentinel.ErrAlreadyUsed when the minted voter number is already taken
//     (the caller re-mints and retries)
//
// Lookups return sentinel.ErrNotFound for unknown voters.
type Store interface {
	Create(ctx context.Context, voter *Voter) error
	FindByID(ctx context.Context, voterID id.VoterID) (*Voter, error)
	FindByNo(ctx context.Context, no id.VoterNo) (*Voter, error)
	SetStatus(ctx context.Context, no id.VoterNo, status Status) error
	Count(ctx context.Context) (int, error)
}
