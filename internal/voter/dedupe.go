package voter

import (
	"fmt"
	"strings"

	id "votegate/pkg/domain"
)

// CollisionKind names which identity key caused a duplicate rejection.
type CollisionKind string

const (
	CollisionPhone   CollisionKind = "phone"
	CollisionNameDOB CollisionKind = "name_dob"
	CollisionFace    CollisionKind = "face"
)

// FaceMatchThreshold is the Euclidean distance below which two descriptors
// count as the same person. Strictly below: a distance of exactly the
// threshold does not match.
const FaceMatchThreshold = 0.45

// Candidate is the identity under consideration for admission.
type Candidate struct {
	Name  string
	DOB   string
	Phone id.Phone
	Face  id.FaceDescriptor
}

// Collision describes the existing voter a candidate collided with.
type Collision struct {
	Kind         CollisionKind
	ExistingNo   id.VoterNo
	ExistingName string
}

// CollisionError is returned by store Create implementations when the
// duplicate detector finds a match.
type CollisionError struct {
	Collision Collision
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("duplicate voter: %s collision with %s", e.Collision.Kind, e.Collision.ExistingNo)
}

// checker inspects the candidate against the existing collection and reports
// a collision or nil.
type checker func(candidate Candidate, existing []Voter) *Collision

// checkers runs in fixed priority order; detection stops at the first hit, so
// a candidate matching on both phone and face reports only the phone.
var checkers = []checker{matchPhone, matchNameDOB, matchFace}

// DetectCollision decides whether the candidate collides with any existing
// voter. Pure function; callers are responsible for running it atomically
// with the subsequent insert.
func DetectCollision(candidate Candidate, existing []Voter) *Collision {
	for _, check := range checkers {
		if c := check(candidate, existing); c != nil {
			return c
		}
	}
	return nil
}

func matchPhone(candidate Candidate, existing []Voter) *Collision {
	for i := range existing {
		if existing[i].Phone == candidate.Phone {
			return &Collision{Kind: CollisionPhone, ExistingNo: existing[i].No, ExistingName: existing[i].Name}
		}
	}
	return nil
}

func matchNameDOB(candidate Candidate, existing []Voter) *Collision {
	name := strings.TrimSpace(candidate.Name)
	for i := range existing {
		if strings.EqualFold(strings.TrimSpace(existing[i].Name), name) &&
			existing[i].DOB == candidate.DOB {
			return &Collision{Kind: CollisionNameDOB, ExistingNo: existing[i].No, ExistingName: existing[i].Name}
		}
	}
	return nil
}

// matchFace is a nearest-neighbor search, not first-match: the collision is
// reported against the closest existing descriptor, with ties broken by
// first-encountered (strict < keeps the first minimal value). Voters with
// malformed stored descriptors are skipped, never matched.
func matchFace(candidate Candidate, existing []Voter) *Collision {
	best := id.DistanceNoMatch
	var nearest *Voter
	for i := range existing {
		d := candidate.Face.Distance(existing[i].Face)
		if d < best {
			best = d
			nearest = &existing[i]
		}
	}
	if nearest != nil && best < FaceMatchThreshold {
		return &Collision{Kind: CollisionFace, ExistingNo: nearest.No, ExistingName: nearest.Name}
	}
	return nil
}
