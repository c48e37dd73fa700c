package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JIATech/SIGVIP-sub002/internal/authorization"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/httputil"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// Service defines the authorization operations the handler exposes.
type Service interface {
	Grant(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID, kinship string, validFrom time.Time, validUntil *time.Time) (*authorization.Authorization, error)
	Revoke(ctx context.Context, authorizationID id.AuthorizationID) (*authorization.Authorization, error)
	Get(ctx context.Context, authorizationID id.AuthorizationID) (*authorization.Authorization, error)
	ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*authorization.Authorization, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*authorization.Authorization, error)
}

// Handler wires authorization endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an authorization handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts authorization endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/authorizations", h.HandleGrant)
	r.Get("/authorizations", h.HandleList)
	r.Get("/authorizations/{authorizationID}", h.HandleGet)
	r.Post("/authorizations/{authorizationID}/revoke", h.HandleRevoke)
}

// HandleGrant handles POST /authorizations requests.
func (h *Handler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[GrantRequest](w, r, h.logger)
	if !ok {
		return
	}

	authorization, err := h.service.Grant(ctx, req.ParsedInmateID(), req.ParsedVisitorID(), req.Kinship, req.ParsedValidFrom(), req.ParsedValidUntil())
	if err != nil {
		h.logger.ErrorContext(ctx, "authorization grant failed",
			"request_id", requestID,
			"inmate_id", req.InmateID,
			"visitor_id", req.VisitorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "authorization granted",
		"request_id", requestID,
		"authorization_id", authorization.ID,
		"inmate_id", authorization.InmateID,
		"visitor_id", authorization.VisitorID,
	)
	httputil.WriteJSON(w, http.StatusCreated, authorization)
}

// HandleRevoke handles POST /authorizations/{authorizationID}/revoke requests.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	authorizationID, err := id.ParseAuthorizationID(chi.URLParam(r, "authorizationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	authorization, err := h.service.Revoke(ctx, authorizationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "authorization revoke failed",
			"request_id", requestID,
			"authorization_id", authorizationID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "authorization revoked",
		"request_id", requestID,
		"authorization_id", authorization.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, authorization)
}

// HandleGet handles GET /authorizations/{authorizationID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	authorizationID, err := id.ParseAuthorizationID(chi.URLParam(r, "authorizationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authorization, err := h.service.Get(r.Context(), authorizationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, authorization)
}

// HandleList handles GET /authorizations requests. Exactly one of
// inmate_id or visitor_id selects the listing side.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawInmate := r.URL.Query().Get("inmate_id")
	rawVisitor := r.URL.Query().Get("visitor_id")

	switch {
	case rawInmate != "" && rawVisitor != "":
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "pass inmate_id or visitor_id, not both"))
	case rawInmate != "":
		inmateID, err := id.ParseInmateID(rawInmate)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		authorizations, err := h.service.ListByInmate(ctx, inmateID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"authorizations": authorizations})
	case rawVisitor != "":
		visitorID, err := id.ParseVisitorID(rawVisitor)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		authorizations, err := h.service.ListByVisitor(ctx, visitorID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"authorizations": authorizations})
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "inmate_id or visitor_id query parameter is required"))
	}
}
