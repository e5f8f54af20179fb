package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"votegate/internal/otp"
	"votegate/pkg/platform/httputil"
	requestmw "votegate/pkg/platform/middleware/request"
)

// OTPService is what this handler needs from the OTP module.
type OTPService interface {
	Send(ctx context.Context, rawPhone string) (*otp.SendResult, error)
	Verify(ctx context.Context, rawPhone, code string) error
}

type OTPHandler struct {
	otp    OTPService
	logger *slog.Logger
}

func NewOTPHandler(service OTPService, logger *slog.Logger) *OTPHandler {
	return &OTPHandler{otp: service, logger: logger}
}

func (h *OTPHandler) Register(r chi.Router) {
	r.Post("/otp/send", h.handleSend)
	r.Post("/otp/verify", h.handleVerify)
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type sendOTPResponse struct {
	MaskedPhone string `json:"masked_phone"`
	DemoCode    string `json:"demo_code,omitempty"`
}

func (h *OTPHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[sendOTPRequest](w, r, h.logger, ctx, requestmw.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.otp.Send(ctx, req.Phone)
	if err != nil {
		h.logger.WarnContext(ctx, "otp send refused",
			"request_id", requestmw.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sendOTPResponse{
		MaskedPhone: result.MaskedPhone,
		DemoCode:    result.DemoCode,
	})
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *OTPHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[verifyOTPRequest](w, r, h.logger, ctx, requestmw.GetRequestID(ctx))
	if !ok {
		return
	}

	if err := h.otp.Verify(ctx, req.Phone, req.Code); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
