package ballot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"votegate/internal/ballot/metrics"
	"votegate/internal/election"
	"votegate/internal/voter"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

const dobLayout = "2006-01-02"

// VoterDirectory is the slice of the voter store this service needs.
type VoterDirectory interface {
	FindByID(ctx context.Context, voterID id.VoterID) (*voter.Voter, error)
}

// ElectionDirectory is the read-only view of election configuration.
type ElectionDirectory interface {
	FindByID(ctx context.Context, electionID id.ElectionID) (*election.Election, error)
}

// Recorder receives an event after a ballot is accepted. The event carries no
// candidate, so the audit trail stays choice-free.
type Recorder interface {
	VoteCast(ctx context.Context, voterNo id.VoterNo, electionID id.ElectionID)
}

// Service evaluates eligibility and records votes.
type Service struct {
	votes     Store
	voters    VoterDirectory
	elections ElectionDirectory
	recorder  Recorder
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

func NewService(votes Store, voters VoterDirectory, elections ElectionDirectory, recorder Recorder, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		votes:     votes,
		voters:    voters,
		elections: elections,
		recorder:  recorder,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("votegate/ballot"),
	}
}

// CastResult is returned to the voter after a ballot is accepted.
type CastResult struct {
	CandidateName string
	CastAt        time.Time
}

// Cast runs the eligibility gates in order and records the vote. Each gate
// refuses with its own code; the store's AppendIfFirst is the final,
// authoritative enforcement of one vote per voter per election.
func (s *Service) Cast(ctx context.Context, voterID id.VoterID, electionID id.ElectionID, candidateID id.CandidateID) (*CastResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ballot.cast",
		trace.WithAttributes(attribute.String("election_id", electionID.String())))
	defer span.End()

	result, err := s.cast(ctx, voterID, electionID, candidateID)
	s.metrics.ObserveCastLatency(time.Since(start))
	if err != nil {
		s.metrics.IncrementOutcome(string(dErrors.CodeOf(err)))
		return nil, err
	}
	s.metrics.IncrementOutcome("ok")
	return result, nil
}

func (s *Service) cast(ctx context.Context, voterID id.VoterID, electionID id.ElectionID, candidateID id.CandidateID) (*CastResult, error) {
	now := requestcontext.Now(ctx)

	v, err := s.voters.FindByID(ctx, voterID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeVoterNotFound, "unknown voter")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load voter", err)
	}
	if v.Status != voter.StatusActive {
		return nil, dErrors.New(dErrors.CodeVoterInactive, "voter is not active")
	}

	e, err := s.elections.FindByID(ctx, electionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeElectionNotFound, "election does not exist")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load election", err)
	}

	if e.Status != election.StatusActive {
		return nil, dErrors.New(dErrors.CodeElectionNotActive, "election is not active")
	}
	if !e.Open(now) {
		return nil, dErrors.New(dErrors.CodeElectionNotOpen, "election is not open for voting")
	}

	if e.HasAgeWindow() {
		if v.DOB == "" {
			return nil, dErrors.New(dErrors.CodeMissingDOB, "voter has no date of birth on record")
		}
		age, err := AgeAt(v.DOB, now)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "compute voter age", err)
		}
		if (e.MinAge > 0 && age < e.MinAge) || (e.MaxAge > 0 && age > e.MaxAge) {
			return nil, dErrors.Newf(dErrors.CodeAgeRestricted, "age %d is outside this election's window", age).
				WithDetails(map[string]any{"age": age})
		}
	}

	voted, err := s.votes.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "check prior vote", err)
	}
	if voted {
		return nil, dErrors.New(dErrors.CodeAlreadyVoted, "a ballot has already been cast in this election")
	}

	candidate, ok := e.CandidateByID(candidateID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidCandidate, "candidate does not belong to this election")
	}

	vote := Vote{
		ID:          id.NewVoteID(),
		ElectionID:  electionID,
		VoterID:     voterID,
		CandidateID: candidateID,
		CastAt:      now,
	}
	err = s.votes.AppendIfFirst(ctx, vote)
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		// A concurrent request won the race between HasVoted and here.
		return nil, dErrors.New(dErrors.CodeAlreadyVoted, "a ballot has already been cast in this election")
	}
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "record vote", err)
	}

	if s.recorder != nil {
		s.recorder.VoteCast(ctx, v.No, electionID)
	}
	s.logger.InfoContext(ctx, "ballot cast",
		"request_id", requestcontext.RequestID(ctx),
		"voter_no", v.No,
		"election_id", electionID,
	)
	return &CastResult{CandidateName: candidate.Name, CastAt: now}, nil
}

// Results tallies votes per candidate for the dashboard collaborator.
func (s *Service) Results(ctx context.Context, electionID id.ElectionID) (map[id.CandidateID]int, error) {
	if _, err := s.elections.FindByID(ctx, electionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeElectionNotFound, "election does not exist")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load election", err)
	}
	counts, err := s.votes.CountByCandidate(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "tally votes", err)
	}
	return counts, nil
}

// AgeAt computes age in whole years at the given instant, calendar-aware: a
// birthday not yet reached this year reduces the age by one.
func AgeAt(dob string, now time.Time) (int, error) {
	born, err := time.ParseInLocation(dobLayout, dob, now.Location())
	if err != nil {
		return 0, err
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() ||
		(now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age, nil
}
