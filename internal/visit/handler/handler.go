package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JIATech/SIGVIP-sub002/internal/visit"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/httputil"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// Service defines the scheduler operations the handler exposes.
type Service interface {
	Evaluate(ctx context.Context, req visit.VisitRequest) (*visit.VisitRecord, error)
	VerifyPass(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, date time.Time, code string) (bool, error)
	ListByInmateAndDate(ctx context.Context, inmateID id.InmateID, date time.Time) ([]*visit.VisitRecord, error)
}

// Handler wires visit endpoints to the scheduler.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a visit handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts visit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/visits/evaluate", h.HandleEvaluate)
	r.Get("/visits", h.HandleListVisits)
	r.Post("/visits/verify-pass", h.HandleVerifyPass)
}

// VisitRecordResponse is the HTTP response DTO for one ledger record.
// PassCode is present exactly once: on the evaluate response that admitted
// the visit.
type VisitRecordResponse struct {
	ID        string    `json:"id"`
	InmateID  string    `json:"inmate_id"`
	VisitorID string    `json:"visitor_id"`
	Date      string    `json:"date"`
	SlotStart string    `json:"slot_start"`
	SlotEnd   string    `json:"slot_end"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
	PassCode  string    `json:"pass_code,omitempty"`
}

func fromRecord(record *visit.VisitRecord) *VisitRecordResponse {
	return &VisitRecordResponse{
		ID:        record.ID.String(),
		InmateID:  record.InmateID.String(),
		VisitorID: record.VisitorID.String(),
		Date:      record.Date.Format("2006-01-02"),
		SlotStart: record.Slot.Start.String(),
		SlotEnd:   record.Slot.End.String(),
		Decision:  string(record.Decision),
		Reason:    string(record.Reason),
		Detail:    record.Detail,
		DecidedAt: record.DecidedAt,
		PassCode:  record.PassCode,
	}
}

func fromRecords(records []*visit.VisitRecord) []*VisitRecordResponse {
	out := make([]*VisitRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, fromRecord(record))
	}
	return out
}

// HandleEvaluate handles POST /visits/evaluate requests. Rejected visits
// are successful evaluations and come back 200 like admissions.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.service.Evaluate(ctx, req.ParsedRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "visit evaluation failed",
			"request_id", requestID,
			"inmate_id", req.InmateID,
			"visitor_id", req.VisitorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "visit evaluated",
		"request_id", requestID,
		"visit_id", record.ID,
		"decision", record.Decision,
		"reason", record.Reason,
	)
	httputil.WriteJSON(w, http.StatusOK, fromRecord(record))
}

// HandleListVisits handles GET /visits?inmate_id=&date= requests.
func (h *Handler) HandleListVisits(w http.ResponseWriter, r *http.Request) {
	inmateID, err := id.ParseInmateID(r.URL.Query().Get("inmate_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	date, err := parseVisitDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.ListByInmateAndDate(r.Context(), inmateID, date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"visits": fromRecords(records)})
}

// HandleVerifyPass handles POST /visits/verify-pass requests. Both
// outcomes are 200; the body says whether the gate opens.
func (h *Handler) HandleVerifyPass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyPassRequest](w, r, h.logger)
	if !ok {
		return
	}

	valid, err := h.service.VerifyPass(ctx, req.ParsedVisitorID(), req.ParsedInmateID(), req.ParsedDate(), req.Code)
	if err != nil {
		h.logger.ErrorContext(ctx, "pass verification failed",
			"request_id", requestID,
			"inmate_id", req.InmateID,
			"visitor_id", req.VisitorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pass verified",
		"request_id", requestID,
		"inmate_id", req.InmateID,
		"visitor_id", req.VisitorID,
		"valid", valid,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"valid": valid})
}
