// Package election holds the election configuration the ballot module reads.
// Elections are created and mutated by the admin surface; the voting path
// only ever reads them.
package election

import (
	"time"

	id "votegate/pkg/domain"
)

// Status of an election.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Candidate is one choice on a ballot.
type Candidate struct {
	ID     id.CandidateID `json:"id"`
	Name   string         `json:"name"`
	Party  string         `json:"party"`
	Symbol string         `json:"symbol"`
}

// Election is one election cycle with its voting window and age eligibility
// window. MinAge/MaxAge of 0 mean "no bound" on that side.
type Election struct {
	ID         id.ElectionID `json:"id"`
	Title      string        `json:"title"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	Status     Status        `json:"status"`
	MinAge     int           `json:"min_age"`
	MaxAge     int           `json:"max_age"`
	Candidates []Candidate   `json:"candidates"`
}

// Open reports whether now falls inside the voting window. Both ends are
// inclusive: a vote at exactly StartDate or EndDate counts.
func (e *Election) Open(now time.Time) bool {
	return !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// CandidateByID returns the candidate if it belongs to this election.
func (e *Election) CandidateByID(candidateID id.CandidateID) (Candidate, bool) {
	for _, c := range e.Candidates {
		if c.ID == candidateID {
			return c, true
		}
	}
	return Candidate{}, false
}

// HasAgeWindow reports whether either age bound is set.
func (e *Election) HasAgeWindow() bool {
	return e.MinAge > 0 || e.MaxAge > 0
}
