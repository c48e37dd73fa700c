package handler

import (
	"strings"
	"time"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	"github.com/JIATech/SIGVIP-sub002/internal/visit"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// EvaluateRequest is the HTTP request body for POST /visits/evaluate.
// Date is a civil date (2006-01-02); slot bounds are HH:MM.
type EvaluateRequest struct {
	InmateID  string `json:"inmate_id"`
	VisitorID string `json:"visitor_id"`
	Date      string `json:"date"`
	SlotStart string `json:"slot_start"`
	SlotEnd   string `json:"slot_end"`

	// Parsed values (populated by Validate)
	parsedRequest visit.VisitRequest
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	inmateID, err := id.ParseInmateID(r.InmateID)
	if err != nil {
		return err
	}
	visitorID, err := id.ParseVisitorID(r.VisitorID)
	if err != nil {
		return err
	}
	date, err := parseVisitDate(r.Date)
	if err != nil {
		return err
	}
	slotStart, err := calendar.ParseTimeOfDay(strings.TrimSpace(r.SlotStart))
	if err != nil {
		return err
	}
	slotEnd, err := calendar.ParseTimeOfDay(strings.TrimSpace(r.SlotEnd))
	if err != nil {
		return err
	}

	r.parsedRequest = visit.VisitRequest{
		InmateID:  inmateID,
		VisitorID: visitorID,
		Date:      date,
		Slot:      calendar.Slot{Start: slotStart, End: slotEnd},
	}
	return r.parsedRequest.Validate()
}

func (r *EvaluateRequest) ParsedRequest() visit.VisitRequest { return r.parsedRequest }

// VerifyPassRequest is the HTTP request body for POST /visits/verify-pass.
type VerifyPassRequest struct {
	InmateID  string `json:"inmate_id"`
	VisitorID string `json:"visitor_id"`
	Date      string `json:"date"`
	Code      string `json:"code"`

	// Parsed values (populated by Validate)
	parsedInmateID  id.InmateID
	parsedVisitorID id.VisitorID
	parsedDate      time.Time
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VerifyPassRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	inmateID, err := id.ParseInmateID(r.InmateID)
	if err != nil {
		return err
	}
	r.parsedInmateID = inmateID

	visitorID, err := id.ParseVisitorID(r.VisitorID)
	if err != nil {
		return err
	}
	r.parsedVisitorID = visitorID

	date, err := parseVisitDate(r.Date)
	if err != nil {
		return err
	}
	r.parsedDate = date

	if strings.TrimSpace(r.Code) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "pass code is required")
	}
	return nil
}

func (r *VerifyPassRequest) ParsedInmateID() id.InmateID { return r.parsedInmateID }

func (r *VerifyPassRequest) ParsedVisitorID() id.VisitorID { return r.parsedVisitorID }

func (r *VerifyPassRequest) ParsedDate() time.Time { return r.parsedDate }

func parseVisitDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date is required")
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "date must be 2006-01-02")
	}
	return date, nil
}
