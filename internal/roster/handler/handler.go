package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/httputil"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// Service defines the roster operations the handler exposes.
type Service interface {
	Establishment(ctx context.Context) (*roster.Establishment, error)
	RegisterInmate(ctx context.Context, fileNumber, cellBlock string, floor int) (*roster.Inmate, error)
	SetInmateStatus(ctx context.Context, inmateID id.InmateID, status roster.PartyStatus) (*roster.Inmate, error)
	GetInmate(ctx context.Context, inmateID id.InmateID) (*roster.Inmate, error)
	ListInmates(ctx context.Context) ([]*roster.Inmate, error)
	RegisterVisitor(ctx context.Context, nationalID, fullName string) (*roster.Visitor, error)
	SetVisitorStatus(ctx context.Context, visitorID id.VisitorID, status roster.PartyStatus) (*roster.Visitor, error)
	GetVisitor(ctx context.Context, visitorID id.VisitorID) (*roster.Visitor, error)
	ListVisitors(ctx context.Context) ([]*roster.Visitor, error)
}

// Handler wires roster endpoints to the roster service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a roster handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts roster endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/establishment", h.HandleGetEstablishment)

	r.Post("/inmates", h.HandleRegisterInmate)
	r.Get("/inmates", h.HandleListInmates)
	r.Get("/inmates/{inmateID}", h.HandleGetInmate)
	r.Put("/inmates/{inmateID}/status", h.HandleSetInmateStatus)

	r.Post("/visitors", h.HandleRegisterVisitor)
	r.Get("/visitors", h.HandleListVisitors)
	r.Get("/visitors/{visitorID}", h.HandleGetVisitor)
	r.Put("/visitors/{visitorID}/status", h.HandleSetVisitorStatus)
}

// HandleGetEstablishment handles GET /establishment requests.
func (h *Handler) HandleGetEstablishment(w http.ResponseWriter, r *http.Request) {
	establishment, err := h.service.Establishment(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEstablishment(establishment))
}

// HandleRegisterInmate handles POST /inmates requests.
func (h *Handler) HandleRegisterInmate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterInmateRequest](w, r, h.logger)
	if !ok {
		return
	}

	inmate, err := h.service.RegisterInmate(ctx, req.FileNumber, req.CellBlock, req.Floor)
	if err != nil {
		h.logger.ErrorContext(ctx, "inmate registration failed",
			"request_id", requestID,
			"file_number", req.FileNumber,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "inmate registered",
		"request_id", requestID,
		"inmate_id", inmate.ID,
		"file_number", inmate.FileNumber,
	)
	httputil.WriteJSON(w, http.StatusCreated, inmate)
}

// HandleListInmates handles GET /inmates requests.
func (h *Handler) HandleListInmates(w http.ResponseWriter, r *http.Request) {
	inmates, err := h.service.ListInmates(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"inmates": inmates})
}

// HandleGetInmate handles GET /inmates/{inmateID} requests.
func (h *Handler) HandleGetInmate(w http.ResponseWriter, r *http.Request) {
	inmateID, err := id.ParseInmateID(chi.URLParam(r, "inmateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	inmate, err := h.service.GetInmate(r.Context(), inmateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inmate)
}

// HandleSetInmateStatus handles PUT /inmates/{inmateID}/status requests.
func (h *Handler) HandleSetInmateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	inmateID, err := id.ParseInmateID(chi.URLParam(r, "inmateID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger)
	if !ok {
		return
	}

	inmate, err := h.service.SetInmateStatus(ctx, inmateID, req.ParsedStatus())
	if err != nil {
		h.logger.ErrorContext(ctx, "inmate status change failed",
			"request_id", requestID,
			"inmate_id", inmateID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "inmate status changed",
		"request_id", requestID,
		"inmate_id", inmate.ID,
		"status", inmate.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, inmate)
}

// HandleRegisterVisitor handles POST /visitors requests.
func (h *Handler) HandleRegisterVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterVisitorRequest](w, r, h.logger)
	if !ok {
		return
	}

	visitor, err := h.service.RegisterVisitor(ctx, req.NationalID, req.FullName)
	if err != nil {
		h.logger.ErrorContext(ctx, "visitor registration failed",
			"request_id", requestID,
			"national_id", req.NationalID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "visitor registered",
		"request_id", requestID,
		"visitor_id", visitor.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, visitor)
}

// HandleListVisitors handles GET /visitors requests.
func (h *Handler) HandleListVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.service.ListVisitors(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"visitors": visitors})
}

// HandleGetVisitor handles GET /visitors/{visitorID} requests.
func (h *Handler) HandleGetVisitor(w http.ResponseWriter, r *http.Request) {
	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "visitorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	visitor, err := h.service.GetVisitor(r.Context(), visitorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, visitor)
}

// HandleSetVisitorStatus handles PUT /visitors/{visitorID}/status requests.
func (h *Handler) HandleSetVisitorStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	visitorID, err := id.ParseVisitorID(chi.URLParam(r, "visitorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger)
	if !ok {
		return
	}

	visitor, err := h.service.SetVisitorStatus(ctx, visitorID, req.ParsedStatus())
	if err != nil {
		h.logger.ErrorContext(ctx, "visitor status change failed",
			"request_id", requestID,
			"visitor_id", visitorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "visitor status changed",
		"request_id", requestID,
		"visitor_id", visitor.ID,
		"status", visitor.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, visitor)
}

// EstablishmentResponse is the wire form of the establishment, with the
// visiting rules flattened to strings.
type EstablishmentResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	VisitingDays   []string  `json:"visiting_days"`
	OpensAt        string    `json:"opens_at"`
	ClosesAt       string    `json:"closes_at"`
	OneVisitPerDay bool      `json:"one_visit_per_day"`
	CreatedAt      time.Time `json:"created_at"`
}

func fromEstablishment(e *roster.Establishment) EstablishmentResponse {
	days := make([]string, 0, len(e.Rules.Days))
	for _, day := range e.Rules.DayList() {
		days = append(days, day.String())
	}
	return EstablishmentResponse{
		ID:             e.ID.String(),
		Name:           e.Name,
		VisitingDays:   days,
		OpensAt:        e.Rules.Open.String(),
		ClosesAt:       e.Rules.Close.String(),
		OneVisitPerDay: e.OneVisitPerDay,
		CreatedAt:      e.CreatedAt,
	}
}
