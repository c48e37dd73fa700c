package handler

import (
	"strings"
	"time"

	"github.com/JIATech/SIGVIP-sub002/internal/restriction"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// AddRequest is the HTTP request body for POST /restrictions. Timestamps
// are RFC 3339; starts_at empty means now.
type AddRequest struct {
	InmateID  string `json:"inmate_id,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
	Reason    string `json:"reason"`
	StartsAt  string `json:"starts_at,omitempty"`
	EndsAt    string `json:"ends_at,omitempty"`

	// Parsed value (populated by Validate)
	parsedParams restriction.Params
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AddRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	var params restriction.Params

	if raw := strings.TrimSpace(r.InmateID); raw != "" {
		inmateID, err := id.ParseInmateID(raw)
		if err != nil {
			return err
		}
		params.InmateID = &inmateID
	}
	if raw := strings.TrimSpace(r.VisitorID); raw != "" {
		visitorID, err := id.ParseVisitorID(raw)
		if err != nil {
			return err
		}
		params.VisitorID = &visitorID
	}
	if params.InmateID == nil && params.VisitorID == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "restriction requires an inmate or visitor target")
	}

	params.Reason = strings.TrimSpace(r.Reason)
	if params.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}

	if raw := strings.TrimSpace(r.StartsAt); raw != "" {
		startsAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "starts_at must be RFC 3339")
		}
		params.StartsAt = startsAt
	}
	if raw := strings.TrimSpace(r.EndsAt); raw != "" {
		endsAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "ends_at must be RFC 3339")
		}
		params.EndsAt = &endsAt
	}

	r.parsedParams = params
	return nil
}

// ParsedParams returns the validated restriction params.
func (r *AddRequest) ParsedParams() restriction.Params {
	return r.parsedParams
}
