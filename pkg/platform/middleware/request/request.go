// Package request assigns each HTTP request a correlation ID, honoring an
// incoming X-Request-ID when the caller supplies one.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"votegate/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware ensures every request carries a correlation ID in both the
// context and the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
