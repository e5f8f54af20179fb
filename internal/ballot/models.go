// Package ballot enforces eligibility and records votes. The one-vote-per-
// election invariant lives in the stores' AppendIfFirst, not in request
// timing.
package ballot

import (
	"time"

	id "votegate/pkg/domain"
)

// Vote is one cast ballot. Created exactly once per (election, voter) pair;
// never mutated or deleted.
type Vote struct {
	ID          id.VoteID
	ElectionID  id.ElectionID
	VoterID     id.VoterID
	CandidateID id.CandidateID
	CastAt      time.Time
}
