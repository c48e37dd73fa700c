// Package restriction tracks temporary visit bans. A restriction targets
// an inmate, a visitor, or both, and while in force blocks every visit
// involving any targeted party.
package restriction

import (
	"strings"
	"time"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// Status marks whether a restriction is in force or was lifted early.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusLifted Status = "LIFTED"
)

// Restriction is one ban record. IDs are sequence numbers assigned by
// the index; their order matches insertion order, which the scheduler
// relies on for deterministic rejection reporting.
//
// Targets: at least one of InmateID and VisitorID is set. A visit is
// blocked when its pair intersects the target set, so a restriction
// naming both parties bans each of them, not only that combination.
type Restriction struct {
	ID        int64         `json:"id"`
	InmateID  *id.InmateID  `json:"inmate_id,omitempty"`
	VisitorID *id.VisitorID `json:"visitor_id,omitempty"`
	Reason    string        `json:"reason"`
	StartsAt  time.Time     `json:"starts_at"`
	EndsAt    *time.Time    `json:"ends_at,omitempty"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	LiftedAt  *time.Time    `json:"lifted_at,omitempty"`
}

// Params carries the caller-supplied fields for a new restriction.
type Params struct {
	InmateID  *id.InmateID
	VisitorID *id.VisitorID
	Reason    string
	StartsAt  time.Time
	EndsAt    *time.Time
}

// Validate checks the params; a zero StartsAt is filled with now by the
// index.
func (p *Params) Validate() error {
	if p.InmateID == nil && p.VisitorID == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "restriction requires an inmate or visitor target")
	}
	if p.InmateID != nil && p.InmateID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "inmate id must not be nil")
	}
	if p.VisitorID != nil && p.VisitorID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "visitor id must not be nil")
	}
	p.Reason = strings.TrimSpace(p.Reason)
	if p.Reason == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reason is required")
	}
	if len(p.Reason) > 256 {
		return dErrors.New(dErrors.CodeInvalidInput, "reason must be 256 characters or less")
	}
	if p.EndsAt != nil && !p.EndsAt.After(p.StartsAt) {
		return dErrors.New(dErrors.CodeInvalidInput, "ends_at must be after starts_at")
	}
	return nil
}

// InForceAt reports whether the restriction blocks visits at the given
// instant. The window is half-open: starts_at inclusive, ends_at
// exclusive. A lifted restriction is never in force.
func (r *Restriction) InForceAt(at time.Time) bool {
	if r.Status != StatusActive {
		return false
	}
	if at.Before(r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && !at.Before(*r.EndsAt) {
		return false
	}
	return true
}

// AppliesTo reports whether the restriction's target set intersects the
// pair: a match on either configured party blocks the visit. A restriction
// recorded against both an inmate and a visitor therefore also bans each
// of them individually, not just that combination.
func (r *Restriction) AppliesTo(inmateID id.InmateID, visitorID id.VisitorID) bool {
	if r.InmateID != nil && *r.InmateID == inmateID {
		return true
	}
	return r.VisitorID != nil && *r.VisitorID == visitorID
}
