package ballot

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"votegate/internal/election"
	"votegate/internal/voter"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/requestcontext"
)

type captureRecorder struct {
	voterNos []id.VoterNo
}

func (c *captureRecorder) VoteCast(_ context.Context, voterNo id.VoterNo, _ id.ElectionID) {
	c.voterNos = append(c.voterNos, voterNo)
}

type BallotServiceSuite struct {
	suite.Suite
	service   *Service
	voters    *voter.InMemoryStore
	elections *election.InMemoryStore
	recorder  *captureRecorder

	electionID  id.ElectionID
	candidateA  id.CandidateID
	candidateB  id.CandidateID
	windowStart time.Time
	windowEnd   time.Time
}

func TestBallotServiceSuite(t *testing.T) {
	suite.Run(t, new(BallotServiceSuite))
}

func (s *BallotServiceSuite) SetupTest() {
	s.voters = voter.NewInMemoryStore()
	s.elections = election.NewInMemoryStore()
	s.recorder = &captureRecorder{}
	s.service = NewService(NewInMemoryStore(), s.voters, s.elections, s.recorder,
		slog.New(slog.DiscardHandler), nil)

	s.windowStart = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	s.windowEnd = time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	s.electionID = id.ElectionID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	s.candidateA = id.CandidateID(uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"))
	s.candidateB = id.CandidateID(uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"))

	err := s.elections.Put(context.Background(), &election.Election{
		ID:        s.electionID,
		Title:     "General Election 2026",
		StartDate: s.windowStart,
		EndDate:   s.windowEnd,
		Status:    election.StatusActive,
		MinAge:    18,
		Candidates: []election.Candidate{
			{ID: s.candidateA, Name: "Asha Rao", Party: "Unity", Symbol: "sun"},
			{ID: s.candidateB, Name: "Ben Kiran", Party: "Forward", Symbol: "tree"},
		},
	})
	s.Require().NoError(err)
}

func (s *BallotServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

var voterSeq int

// addVoter registers an active voter with the given date of birth. Name and
// phone are unique per call so the duplicate detector never trips here.
func (s *BallotServiceSuite) addVoter(dob string) *voter.Voter {
	voterSeq++
	no, err := id.MintVoterNo()
	s.Require().NoError(err)
	v := &voter.Voter{
		ID:     id.NewVoterID(),
		No:     no,
		Name:   fmt.Sprintf("Voter %05d", voterSeq),
		DOB:    dob,
		Phone:  id.Phone(fmt.Sprintf("98765%05d", voterSeq)),
		Status: voter.StatusActive,
	}
	s.Require().NoError(s.voters.Create(context.Background(), v))
	return v
}

func (s *BallotServiceSuite) TestCast() {
	s.Run("accepts an eligible vote and reports the candidate name", func() {
		v := s.addVoter("1990-06-15")
		result, err := s.service.Cast(s.at(s.windowStart.Add(time.Hour)), v.ID, s.electionID, s.candidateA)
		s.Require().NoError(err)
		s.Equal("Asha Rao", result.CandidateName)
		s.Equal([]id.VoterNo{v.No}, s.recorder.voterNos)
	})

	s.Run("unknown voter", func() {
		_, err := s.service.Cast(s.at(s.windowStart), id.NewVoterID(), s.electionID, s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeVoterNotFound))
	})

	s.Run("inactive voter", func() {
		v := s.addVoter("1990-06-15")
		s.Require().NoError(s.voters.SetStatus(context.Background(), v.No, voter.StatusInactive))

		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeVoterInactive))
	})

	s.Run("unknown election", func() {
		v := s.addVoter("1990-06-15")
		_, err := s.service.Cast(s.at(s.windowStart), v.ID, id.ElectionID(uuid.New()), s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeElectionNotFound))
	})

	s.Run("candidate from another election", func() {
		v := s.addVoter("1990-06-15")
		stray := id.CandidateID(uuid.New())

		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, stray)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCandidate))
	})

	// Mutates the shared election, so it runs last.
	s.Run("closed election refuses even inside the window", func() {
		s.Require().NoError(s.elections.SetStatus(context.Background(), s.electionID, election.StatusClosed))
		v := s.addVoter("1990-06-15")

		_, err := s.service.Cast(s.at(s.windowStart.Add(time.Hour)), v.ID, s.electionID, s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeElectionNotActive))
	})
}

func (s *BallotServiceSuite) TestVotingWindow() {
	s.Run("one second before the window opens", func() {
		v := s.addVoter("1990-06-15")
		_, err := s.service.Cast(s.at(s.windowStart.Add(-time.Second)), v.ID, s.electionID, s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeElectionNotOpen))
	})

	s.Run("exactly at the opening instant", func() {
		v := s.addVoter("1990-06-15")
		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, s.candidateA)
		s.Require().NoError(err)
	})

	s.Run("exactly at the closing instant", func() {
		v := s.addVoter("1990-06-15")
		_, err := s.service.Cast(s.at(s.windowEnd), v.ID, s.electionID, s.candidateA)
		s.Require().NoError(err)
	})

	s.Run("one second after the window closes", func() {
		v := s.addVoter("1990-06-15")
		_, err := s.service.Cast(s.at(s.windowEnd.Add(time.Second)), v.ID, s.electionID, s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeElectionNotOpen))
	})
}

func (s *BallotServiceSuite) TestAgeWindow() {
	s.Run("one day short of the eighteenth birthday", func() {
		// Election day 2026-04-01; born 2008-04-02 turns 18 the next day.
		v := s.addVoter("2008-04-02")
		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, s.candidateA)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAgeRestricted))

		var de *dErrors.Error
		s.Require().ErrorAs(err, &de)
		s.Equal(17, de.Details["age"])
	})

	s.Run("eighteenth birthday falls on election day", func() {
		v := s.addVoter("2008-04-01")
		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, s.candidateA)
		s.Require().NoError(err)
	})

	s.Run("voter above the maximum age", func() {
		capped := *mustElection(s.elections, s.electionID)
		capped.MaxAge = 60
		s.Require().NoError(s.elections.Put(context.Background(), &capped))

		v := s.addVoter("1950-01-01")
		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeAgeRestricted))
	})

	s.Run("missing date of birth when an age window is set", func() {
		v := s.addVoter("")
		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, s.candidateA)
		s.True(dErrors.HasCode(err, dErrors.CodeMissingDOB))
	})

	s.Run("no age window means no date of birth is required", func() {
		open := *mustElection(s.elections, s.electionID)
		open.MinAge = 0
		open.MaxAge = 0
		s.Require().NoError(s.elections.Put(context.Background(), &open))

		v := s.addVoter("")
		_, err := s.service.Cast(s.at(s.windowStart), v.ID, s.electionID, s.candidateA)
		s.Require().NoError(err)
	})
}

func mustElection(store *election.InMemoryStore, electionID id.ElectionID) *election.Election {
	e, err := store.FindByID(context.Background(), electionID)
	if err != nil {
		panic(err)
	}
	return e
}

func (s *BallotServiceSuite) TestOneVotePerElection() {
	s.Run("second vote refused regardless of candidate", func() {
		v := s.addVoter("1990-06-15")
		ctx := s.at(s.windowStart.Add(time.Hour))

		_, err := s.service.Cast(ctx, v.ID, s.electionID, s.candidateA)
		s.Require().NoError(err)

		_, err = s.service.Cast(ctx, v.ID, s.electionID, s.candidateB)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVoted))

		counts, err := s.service.Results(ctx, s.electionID)
		s.Require().NoError(err)
		s.Equal(1, counts[s.candidateA])
		s.Zero(counts[s.candidateB])
	})
}

func (s *BallotServiceSuite) TestResults() {
	s.Run("tallies votes per candidate", func() {
		ctx := s.at(s.windowStart.Add(time.Hour))
		for i := 0; i < 3; i++ {
			v := s.addVoter("1990-06-15")
			_, err := s.service.Cast(ctx, v.ID, s.electionID, s.candidateA)
			s.Require().NoError(err)
		}
		v := s.addVoter("1990-06-15")
		_, err := s.service.Cast(ctx, v.ID, s.electionID, s.candidateB)
		s.Require().NoError(err)

		counts, err := s.service.Results(ctx, s.electionID)
		s.Require().NoError(err)
		s.Equal(3, counts[s.candidateA])
		s.Equal(1, counts[s.candidateB])
	})

	s.Run("unknown election", func() {
		_, err := s.service.Results(context.Background(), id.ElectionID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeElectionNotFound))
	})
}
