// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; business rules live below.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"votegate/pkg/platform/httputil"
	adminmw "votegate/pkg/platform/middleware/admin"
	authmw "votegate/pkg/platform/middleware/auth"
	"votegate/pkg/platform/middleware/metadata"
	requestmw "votegate/pkg/platform/middleware/request"
	"votegate/pkg/platform/middleware/requesttime"
)

// Health reports backing-store reachability for the health endpoint.
type Health interface {
	Healthy(r *http.Request) error
}

// HealthFunc adapts a function to the Health interface.
type HealthFunc func(r *http.Request) error

func (f HealthFunc) Healthy(r *http.Request) error { return f(r) }

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	OTP            *OTPHandler
	Registration   *RegistrationHandler
	Auth           *AuthHandler
	Election       *ElectionHandler
	Admin          *AdminHandler
	TokenValidator authmw.TokenValidator
	AdminTokenHash string
	Health         Health
}

// NewRouter wires middleware and mounts every endpoint group.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(requestmw.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(latencyMiddleware())

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.OTP.Register(r)
	deps.Registration.Register(r)
	deps.Auth.Register(r)
	deps.Election.Register(r, authmw.RequireVoter(deps.TokenValidator, deps.Logger))

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(adminmw.RequireAdminToken(deps.AdminTokenHash, deps.Logger))
		deps.Admin.Register(admin)
	})

	return r
}

func handleHealth(health Health) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health.Healthy(r); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
