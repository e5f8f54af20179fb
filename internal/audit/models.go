// Package audit records who did what, when. Events never carry a ballot
// choice: the trail proves a voter acted without revealing how they voted.
package audit

import "time"

// Type classifies an audit event.
type Type string

const (
	TypeVoterRegistered    Type = "voter.registered"
	TypeVoterLoggedIn      Type = "voter.logged_in"
	TypeVoteCast           Type = "vote.cast"
	TypeElectionClosed     Type = "election.closed"
	TypeVoterStatusChanged Type = "voter.status_changed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Type       Type      `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Device     string    `json:"device,omitempty"`
	VoterNo    string    `json:"voter_no,omitempty"`
	ElectionID string    `json:"election_id,omitempty"`
	// Phone is always the masked form; raw phone numbers never reach the trail.
	Phone  string `json:"phone,omitempty"`
	Detail string `json:"detail,omitempty"`
}
