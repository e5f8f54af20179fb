package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votegate/internal/auth"
	"votegate/pkg/platform/httputil"
	requestmw "votegate/pkg/platform/middleware/request"
)

// AuthService is what this handler needs from the login flow.
type AuthService interface {
	Login(ctx context.Context, rawVoterNo, rawPhone string) (*auth.LoginResult, error)
}

type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: service, logger: logger}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

type loginRequest struct {
	VoterNo string `json:"voter_no"`
	Phone   string `json:"phone"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
	VoterNo   string `json:"voter_no"`
	Name      string `json:"name"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger, ctx, requestmw.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.auth.Login(ctx, req.VoterNo, req.Phone)
	if err != nil {
		h.logger.WarnContext(ctx, "login refused",
			"request_id", requestmw.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		VoterNo:   result.VoterNo.String(),
		Name:      result.Name,
	})
}
