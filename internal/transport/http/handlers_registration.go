package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votegate/internal/registration"
	"votegate/pkg/platform/httputil"
	requestmw "votegate/pkg/platform/middleware/request"
)

// RegistrationService is what this handler needs from the pipeline.
type RegistrationService interface {
	Register(ctx context.Context, input registration.Input) (*registration.Result, error)
}

type RegistrationHandler struct {
	registration RegistrationService
	logger       *slog.Logger
}

func NewRegistrationHandler(service RegistrationService, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{registration: service, logger: logger}
}

func (h *RegistrationHandler) Register(r chi.Router) {
	r.Post("/voters/register", h.handleRegister)
}

type registerRequest struct {
	Name          string    `json:"name"`
	DOB           string    `json:"dob"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Face          []float64 `json:"face_descriptor"`
	ProofType     string    `json:"proof_type"`
	ProofVerified bool      `json:"proof_verified"`
}

type registerResponse struct {
	VoterNo string `json:"voter_no"`
	Name    string `json:"name"`
}

func (h *RegistrationHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[registerRequest](w, r, h.logger, ctx, requestmw.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.registration.Register(ctx, registration.Input{
		Name:          req.Name,
		DOB:           req.DOB,
		Phone:         req.Phone,
		Address:       req.Address,
		Face:          req.Face,
		ProofType:     req.ProofType,
		ProofVerified: req.ProofVerified,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration refused",
			"request_id", requestmw.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registerResponse{
		VoterNo: result.VoterNo.String(),
		Name:    result.Name,
	})
}
