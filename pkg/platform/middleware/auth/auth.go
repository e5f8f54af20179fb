// Package auth validates voter session tokens and injects the authenticated
// voter identity into the request context.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "votegate/pkg/domain"
	request "votegate/pkg/platform/middleware/request"
	"votegate/pkg/requestcontext"
)

// SessionClaims is what the middleware needs from a validated token.
type SessionClaims struct {
	VoterID id.VoterID
	VoterNo id.VoterNo
}

// TokenValidator validates a bearer token string.
type TokenValidator interface {
	ValidateToken(tokenString string) (*SessionClaims, error)
}

// RequireVoter rejects requests without a valid Bearer token and injects the
// voter's internal ID and public number into the context for handlers.
func RequireVoter(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeUnauthorized(w, "bearer token required")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.DebugContext(ctx, "session token rejected",
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				writeUnauthorized(w, "invalid or expired session")
				return
			}

			ctx = requestcontext.WithVoterID(ctx, claims.VoterID)
			ctx = requestcontext.WithVoterNo(ctx, claims.VoterNo)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
