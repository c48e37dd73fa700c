package handler

import (
	"strings"
	"time"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// GrantRequest is the HTTP request body for POST /authorizations.
// Timestamps are RFC 3339; valid_from empty means now.
type GrantRequest struct {
	InmateID   string `json:"inmate_id"`
	VisitorID  string `json:"visitor_id"`
	Kinship    string `json:"kinship"`
	ValidFrom  string `json:"valid_from,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"`

	// Parsed values (populated by Validate)
	parsedInmateID   id.InmateID
	parsedVisitorID  id.VisitorID
	parsedValidFrom  time.Time
	parsedValidUntil *time.Time
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *GrantRequest) Validate() error {
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

	r.Kinship = strings.TrimSpace(r.Kinship)
	if r.Kinship == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "kinship is required")
	}

	if raw := strings.TrimSpace(r.ValidFrom); raw != "" {
		validFrom, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "valid_from must be RFC 3339")
		}
		r.parsedValidFrom = validFrom
	}
	if raw := strings.TrimSpace(r.ValidUntil); raw != "" {
		validUntil, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "valid_until must be RFC 3339")
		}
		r.parsedValidUntil = &validUntil
	}
	return nil
}

func (r *GrantRequest) ParsedInmateID() id.InmateID { return r.parsedInmateID }

func (r *GrantRequest) ParsedVisitorID() id.VisitorID { return r.parsedVisitorID }

func (r *GrantRequest) ParsedValidFrom() time.Time { return r.parsedValidFrom }

func (r *GrantRequest) ParsedValidUntil() *time.Time { return r.parsedValidUntil }
