// Package voter holds the registered-voter identity record, the duplicate
// detector that guards admission, and the stores that persist identities.
package voter

import (
	"time"

	id "votegate/pkg/domain"
)

// Status of a voter identity. Only admins flip this; everything else about an
// identity is immutable once issued.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Voter is one registered identity. Exactly one may exist per phone, per
// (name, DOB) pair, and per face within the match threshold; the stores
// enforce this at creation time.
type Voter struct {
	ID           id.VoterID
	No           id.VoterNo
	Name         string
	DOB          string // ISO date (2006-01-02)
	Phone        id.Phone
	Address      string
	ProofType    string
	Face         id.FaceDescriptor
	RegisteredAt time.Time
	Status       Status
}
