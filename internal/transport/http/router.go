// Package http assembles the service's router from the per-domain handlers.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cybercell/pkg/platform/httputil"
)

// Registrar is anything that mounts routes on the router; both domain
// handlers satisfy it.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports a dependency's liveness for /healthz.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) Health(ctx context.Context) error { return f(ctx) }

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Handlers []Registrar
	// Checks is the set of dependencies /healthz pings, keyed by name.
	Checks map[string]HealthChecker
}

// NewRouter builds the top-level router: domain routes, /healthz and
// /metrics.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", healthHandler(deps))
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range deps.Handlers {
		h.Register(r)
	}
	return r
}

func healthHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps.Checks))
		for name, check := range deps.Checks {
			if err := check.Health(ctx); err != nil {
				deps.Logger.WarnContext(ctx, "health check failed",
					"dependency", name,
					"error", err,
				)
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		httputil.WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": checks,
		})
	}
}
