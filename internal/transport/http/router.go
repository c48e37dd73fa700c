// Package httptransport assembles the public HTTP surface: the /api/v1
// staff API behind JWT auth, plus the open health and metrics endpoints.
// All domain behavior lives in the per-module handler packages; this
// package only owns the middleware chain and mounting.
package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/metrics"
	"github.com/JIATech/SIGVIP-sub002/internal/platform/middleware"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/httputil"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/middleware/metadata"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router mounts. Handlers register their own
// routes; the router owns ordering and the auth boundary.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	StaffValidator middleware.TokenValidator

	Roster         Registrar
	Authorizations Registrar
	Restrictions   Registrar
	Visits         Registrar

	// AuditStore serves the recent-events endpoint. Optional.
	AuditStore audit.Store

	// RequestTimeout bounds every API request. Zero means 30s.
	RequestTimeout time.Duration
}

// NewRouter builds the chi router with the full middleware chain.
//
// Chain order matters: recovery outermost so panics in other middleware
// are caught; request id, time, and client metadata before logging so
// every log line and audit event can carry them; auth innermost so
// rejected requests still get logged and measured.
func NewRouter(deps Deps) http.Handler {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	api := chi.NewRouter()
	api.Use(middleware.Recovery(deps.Logger))
	api.Use(middleware.RequestID)
	api.Use(requesttime.Middleware)
	api.Use(metadata.ClientMetadata)
	api.Use(middleware.Logger(deps.Logger))
	api.Use(middleware.Timeout(timeout))
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.LatencyMiddleware(deps.Metrics))
	api.Use(middleware.RequireStaff(deps.StaffValidator, deps.Logger))

	deps.Roster.Register(api)
	deps.Authorizations.Register(api)
	deps.Restrictions.Register(api)
	deps.Visits.Register(api)
	if deps.AuditStore != nil {
		api.Get("/audit/events", handleRecentAuditEvents(deps.AuditStore))
	}

	r.Mount("/api/v1", api)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecentAuditEvents serves the newest audit events, default 50.
func handleRecentAuditEvents(store audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > 1000 {
				httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
					"error":             "invalid_input",
					"error_description": "limit must be an integer between 1 and 1000",
				})
				return
			}
			limit = parsed
		}

		events, err := store.ListRecent(r.Context(), limit)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}
