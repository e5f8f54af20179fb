package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votegate/internal/audit"
	"votegate/internal/election"
	"votegate/internal/voter"
	id "votegate/pkg/domain"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	requestmw "votegate/pkg/platform/middleware/request"
	"votegate/pkg/platform/sentinel"
)

// ElectionAdmin is the write side of the election store.
type ElectionAdmin interface {
	SetStatus(ctx context.Context, electionID id.ElectionID, status election.Status) error
}

// VoterAdmin toggles voter status.
type VoterAdmin interface {
	SetStatus(ctx context.Context, no id.VoterNo, status voter.Status) error
}

// AuditReader exposes the retained audit trail.
type AuditReader interface {
	List(ctx context.Context) ([]audit.Event, error)
}

// AdminRecorder captures admin actions in the audit trail.
type AdminRecorder interface {
	ElectionClosed(ctx context.Context, electionID id.ElectionID)
	VoterStatusChanged(ctx context.Context, voterNo id.VoterNo, status string)
}

type AdminHandler struct {
	elections ElectionAdmin
	voters    VoterAdmin
	trail     AuditReader
	recorder  AdminRecorder
	logger    *slog.Logger
}

func NewAdminHandler(elections ElectionAdmin, voters VoterAdmin, trail AuditReader, recorder AdminRecorder, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		elections: elections,
		voters:    voters,
		trail:     trail,
		recorder:  recorder,
		logger:    logger,
	}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/elections/{electionID}/close", h.handleCloseElection)
	r.Put("/voters/{voterNo}/status", h.handleVoterStatus)
	r.Get("/audit", h.handleAuditTrail)
}

func (h *AdminHandler) handleCloseElection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, err := id.ParseElectionID(chi.URLParam(r, "electionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.elections.SetStatus(ctx, electionID, election.StatusClosed); err != nil {
		httputil.WriteError(w, translateElectionLookup(err))
		return
	}

	if h.recorder != nil {
		h.recorder.ElectionClosed(ctx, electionID)
	}
	h.logger.InfoContext(ctx, "election closed",
		"request_id", requestmw.GetRequestID(ctx),
		"election_id", electionID,
	)
	w.WriteHeader(http.StatusNoContent)
}

type voterStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) handleVoterStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestmw.GetRequestID(ctx)

	voterNo, err := id.ParseVoterNo(chi.URLParam(r, "voterNo"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[voterStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	status := voter.Status(req.Status)
	if status != voter.StatusActive && status != voter.StatusInactive {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "status must be active or inactive"))
		return
	}

	if err := h.voters.SetStatus(ctx, voterNo, status); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeVoterNotFound, "unknown voter"))
			return
		}
		httputil.WriteError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.VoterStatusChanged(ctx, voterNo, string(status))
	}
	h.logger.InfoContext(ctx, "voter status changed",
		"request_id", requestID,
		"voter_no", voterNo,
		"status", status,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.trail.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
