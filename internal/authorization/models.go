// Package authorization keeps the registry of which visitors may visit
// which inmates. At most one ACTIVE authorization exists per
// inmate/visitor pair; revoking frees the pair for a new grant.
package authorization

import (
	"strings"
	"time"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// Status marks whether an authorization is in force.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusRevoked Status = "REVOKED"
)

// Authorization links a visitor to an inmate for a validity window.
// ValidUntil nil means open-ended.
type Authorization struct {
	ID         id.AuthorizationID `json:"id"`
	InmateID   id.InmateID        `json:"inmate_id"`
	VisitorID  id.VisitorID       `json:"visitor_id"`
	Kinship    string             `json:"kinship"`
	Status     Status             `json:"status"`
	ValidFrom  time.Time          `json:"valid_from"`
	ValidUntil *time.Time         `json:"valid_until,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	RevokedAt  *time.Time         `json:"revoked_at,omitempty"`
}

// New validates and builds an authorization. A zero validFrom defaults
// to now.
func New(authorizationID id.AuthorizationID, inmateID id.InmateID, visitorID id.VisitorID, kinship string, validFrom time.Time, validUntil *time.Time, now time.Time) (*Authorization, error) {
	if inmateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "inmate id is required")
	}
	if visitorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "visitor id is required")
	}
	kinship = strings.TrimSpace(kinship)
	if kinship == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "kinship is required")
	}
	if len(kinship) > 64 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "kinship must be 64 characters or less")
	}
	if validFrom.IsZero() {
		validFrom = now
	}
	if validUntil != nil && !validUntil.After(validFrom) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "valid_until must be after valid_from")
	}
	return &Authorization{
		ID:         authorizationID,
		InmateID:   inmateID,
		VisitorID:  visitorID,
		Kinship:    kinship,
		Status:     StatusActive,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
		CreatedAt:  now,
	}, nil
}

// CoversAt reports whether the authorization is in force at the given
// instant. The window is half-open: valid_from inclusive, valid_until
// exclusive.
func (a *Authorization) CoversAt(at time.Time) bool {
	if a.Status != StatusActive {
		return false
	}
	if at.Before(a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && !at.Before(*a.ValidUntil) {
		return false
	}
	return true
}

// ApplyRevocation marks the authorization revoked. Callers check status
// first; revoking twice is a state conflict.
func (a *Authorization) ApplyRevocation(now time.Time) {
	a.Status = StatusRevoked
	a.RevokedAt = &now
}
