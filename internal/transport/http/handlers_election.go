package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"votegate/internal/ballot"
	"votegate/internal/election"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	requestmw "votegate/pkg/platform/middleware/request"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/requestcontext"
)

// ElectionDirectory is the read side of the election store.
type ElectionDirectory interface {
	List(ctx context.Context) ([]*election.Election, error)
	FindByID(ctx context.Context, electionID id.ElectionID) (*election.Election, error)
}

// BallotService is what this handler needs from ballot casting.
type BallotService interface {
	Cast(ctx context.Context, voterID id.VoterID, electionID id.ElectionID, candidateID id.CandidateID) (*ballot.CastResult, error)
	Results(ctx context.Context, electionID id.ElectionID) (map[id.CandidateID]int, error)
}

type ElectionHandler struct {
	elections ElectionDirectory
	ballots   BallotService
	logger    *slog.Logger
}

func NewElectionHandler(elections ElectionDirectory, ballots BallotService, logger *slog.Logger) *ElectionHandler {
	return &ElectionHandler{elections: elections, ballots: ballots, logger: logger}
}

// Register mounts the election routes; the vote route sits behind the session
// middleware.
func (h *ElectionHandler) Register(r chi.Router, requireVoter func(http.Handler) http.Handler) {
	r.Get("/elections", h.handleList)
	r.Get("/elections/{electionID}", h.handleGet)
	r.Get("/elections/{electionID}/results", h.handleResults)

	r.Group(func(voter chi.Router) {
		voter.Use(requireVoter)
		voter.Post("/elections/{electionID}/vote", h.handleVote)
	})
}

func (h *ElectionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	elections, err := h.elections.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list elections",
			"request_id", requestmw.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"elections": elections})
}

func (h *ElectionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.elections.FindByID(ctx, electionID)
	if err != nil {
		httputil.WriteError(w, translateElectionLookup(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

// translateElectionLookup maps the store sentinel to the domain code; any
// other failure stays internal.
func translateElectionLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeElectionNotFound, "election does not exist")
	}
	return err
}

type voteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type voteResponse struct {
	Candidate string    `json:"candidate"`
	CastAt    time.Time `json:"cast_at"`
}

func (h *ElectionHandler) handleVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestmw.GetRequestID(ctx)

	voterID := requestcontext.VoterID(ctx)
	if voterID.IsZero() {
		// Unreachable when the session middleware is mounted.
		h.logger.ErrorContext(ctx, "voter missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[voteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	candidateID, err := id.ParseCandidateID(req.CandidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.ballots.Cast(ctx, voterID, electionID, candidateID)
	if err != nil {
		// The session middleware injected the voter number; log it so a
		// refusal can be traced without a store lookup.
		h.logger.WarnContext(ctx, "vote refused",
			"request_id", requestID,
			"voter_no", requestcontext.VoterNo(ctx),
			"election_id", electionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, voteResponse{
		Candidate: result.CandidateName,
		CastAt:    result.CastAt,
	})
}

type candidateTally struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Votes       int    `json:"votes"`
}

type resultsResponse struct {
	ElectionID string           `json:"election_id"`
	Title      string           `json:"title"`
	Total      int              `json:"total_votes"`
	Tally      []candidateTally `json:"tally"`
}

// handleResults joins the per-candidate counts with the election's candidate
// list so zero-vote candidates still appear.
func (h *ElectionHandler) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	e, err := h.elections.FindByID(ctx, electionID)
	if err != nil {
		httputil.WriteError(w, translateElectionLookup(err))
		return
	}
	counts, err := h.ballots.Results(ctx, electionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := resultsResponse{
		ElectionID: e.ID.String(),
		Title:      e.Title,
		Tally:      make([]candidateTally, 0, len(e.Candidates)),
	}
	for _, c := range e.Candidates {
		votes := counts[c.ID]
		resp.Total += votes
		resp.Tally = append(resp.Tally, candidateTally{
			CandidateID: c.ID.String(),
			Name:        c.Name,
			Party:       c.Party,
			Votes:       votes,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
