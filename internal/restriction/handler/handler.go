package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JIATech/SIGVIP-sub002/internal/restriction"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/httputil"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// Service defines the restriction operations the handler exposes.
type Service interface {
	Add(ctx context.Context, params restriction.Params) (*restriction.Restriction, error)
	Lift(ctx context.Context, restrictionID int64) (*restriction.Restriction, error)
	Get(ctx context.Context, restrictionID int64) (*restriction.Restriction, error)
	List(ctx context.Context, inmateID *id.InmateID, visitorID *id.VisitorID) ([]*restriction.Restriction, error)
	ActiveAt(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID, at time.Time) ([]*restriction.Restriction, error)
}

// Handler wires restriction endpoints to the restriction service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a restriction handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts restriction endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/restrictions", h.HandleAdd)
	r.Get("/restrictions", h.HandleList)
	r.Get("/restrictions/{restrictionID}", h.HandleGet)
	r.Post("/restrictions/{restrictionID}/lift", h.HandleLift)
}

// HandleAdd handles POST /restrictions requests.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddRequest](w, r, h.logger)
	if !ok {
		return
	}

	restriction, err := h.service.Add(ctx, req.ParsedParams())
	if err != nil {
		h.logger.ErrorContext(ctx, "restriction add failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "restriction added",
		"request_id", requestID,
		"restriction_id", restriction.ID,
		"reason", restriction.Reason,
	)
	httputil.WriteJSON(w, http.StatusCreated, restriction)
}

// HandleLift handles POST /restrictions/{restrictionID}/lift requests.
func (h *Handler) HandleLift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	restrictionID, err := parseRestrictionID(chi.URLParam(r, "restrictionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	restriction, err := h.service.Lift(ctx, restrictionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "restriction lift failed",
			"request_id", requestID,
			"restriction_id", restrictionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "restriction lifted",
		"request_id", requestID,
		"restriction_id", restriction.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, restriction)
}

// HandleGet handles GET /restrictions/{restrictionID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	restrictionID, err := parseRestrictionID(chi.URLParam(r, "restrictionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	restriction, err := h.service.Get(r.Context(), restrictionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, restriction)
}

// HandleList handles GET /restrictions requests with optional inmate_id,
// visitor_id and at filters. With `at` set (RFC 3339), only restrictions
// in force at that instant are returned; combined with both party ids
// this answers "what blocks this pair right now".
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var inmateID *id.InmateID
	var visitorID *id.VisitorID

	if raw := strings.TrimSpace(r.URL.Query().Get("inmate_id")); raw != "" {
		parsed, err := id.ParseInmateID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		inmateID = &parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("visitor_id")); raw != "" {
		parsed, err := id.ParseVisitorID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		visitorID = &parsed
	}

	var at *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("at")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "at must be an RFC 3339 timestamp"))
			return
		}
		at = &parsed
	}

	if at != nil && inmateID != nil && visitorID != nil {
		restrictions, err := h.service.ActiveAt(r.Context(), *inmateID, *visitorID, *at)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"restrictions": restrictions})
		return
	}

	restrictions, err := h.service.List(r.Context(), inmateID, visitorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if at != nil {
		inForce := restrictions[:0]
		for _, banned := range restrictions {
			if banned.InForceAt(*at) {
				inForce = append(inForce, banned)
			}
		}
		restrictions = inForce
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"restrictions": restrictions})
}

func parseRestrictionID(raw string) (int64, error) {
	restrictionID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || restrictionID <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "restriction id must be a positive integer")
	}
	return restrictionID, nil
}
