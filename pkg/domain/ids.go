// Package domain holds the value types shared across modules: typed record
// IDs, the public voter number, normalized phone numbers, and face
// descriptors. Construct values via the Parse/New functions at trust
// boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "votegate/pkg/domain-errors"
)

// Typed UUID wrappers. Distinct types keep a VoterID from ever being passed
// where an ElectionID is expected; the compiler enforces it.
type (
	VoterID     uuid.UUID
	ElectionID  uuid.UUID
	CandidateID uuid.UUID
	VoteID      uuid.UUID
)

func (id VoterID) String() string     { return uuid.UUID(id).String() }
func (id ElectionID) String() string  { return uuid.UUID(id).String() }
func (id CandidateID) String() string { return uuid.UUID(id).String() }
func (id VoteID) String() string      { return uuid.UUID(id).String() }

func (id VoterID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ElectionID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CandidateID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id VoteID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }

// Text marshalling so the typed IDs serialize as canonical UUID strings in
// JSON payloads and seed files.
func (id VoterID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id ElectionID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id CandidateID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id VoteID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }

func (id *VoterID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = VoterID(u)
	return nil
}

func (id *ElectionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ElectionID(u)
	return nil
}

func (id *CandidateID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = CandidateID(u)
	return nil
}

func (id *VoteID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = VoteID(u)
	return nil
}

// NewVoterID mints a fresh internal voter ID.
func NewVoterID() VoterID { return VoterID(uuid.New()) }

// NewVoteID mints a fresh vote record ID.
func NewVoteID() VoteID { return VoteID(uuid.New()) }

// ParseVoterID validates external input as an internal voter ID.
// Errors: CodeInvalidInput when empty, malformed, or the nil UUID.
func ParseVoterID(s string) (VoterID, error) {
	u, err := parseUUID(s, "voter id")
	return VoterID(u), err
}

// ParseElectionID validates external input as an election ID.
func ParseElectionID(s string) (ElectionID, error) {
	u, err := parseUUID(s, "election id")
	return ElectionID(u), err
}

// ParseCandidateID validates external input as a candidate ID.
func ParseCandidateID(s string) (CandidateID, error) {
	u, err := parseUUID(s, "candidate id")
	return CandidateID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be the nil UUID")
	}
	return u, nil
}
