// Package visit is the decision core of the engine. The Scheduler takes a
// visit request, gathers evidence about the parties, the establishment's
// visiting window, authorizations, restrictions, and prior visits, runs a
// fixed-order rule chain over it, and appends the outcome to the Ledger.
//
// Rejections are data, not errors: a request that fails a rule produces a
// REJECTED VisitRecord naming the first rule it failed. Errors are reserved
// for infrastructure failures and malformed input.
package visit

import (
	"time"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

// Decision is the outcome of an evaluation.
type Decision string

const (
	DecisionAdmitted Decision = "ADMITTED"
	DecisionRejected Decision = "REJECTED"
)

// RejectionReason names the first rule a rejected request failed. The
// values are stable wire codes; Detail on the record carries the
// human-readable part.
type RejectionReason string

const (
	// ReasonPartyInactive: the inmate or the visitor is unknown or INACTIVE.
	ReasonPartyInactive RejectionReason = "PARTY_INACTIVE"

	// ReasonOutsideVisitingHours: the slot falls outside the establishment's
	// visiting days or opening window.
	ReasonOutsideVisitingHours RejectionReason = "OUTSIDE_VISITING_HOURS"

	// ReasonNotAuthorized: no authorization in force for the pair at the
	// requested moment.
	ReasonNotAuthorized RejectionReason = "NOT_AUTHORIZED"

	// ReasonRestricted: an active restriction blocks the inmate, the
	// visitor, or the pair.
	ReasonRestricted RejectionReason = "RESTRICTED"

	// ReasonDuplicateOrConflict: an admitted visit already occupies the
	// date or overlaps the slot under the establishment's policy.
	ReasonDuplicateOrConflict RejectionReason = "DUPLICATE_OR_CONFLICT"
)

// VisitRequest is the transient input to Scheduler.Evaluate. Date is a
// civil date; Validate normalizes it to 00:00 UTC.
type VisitRequest struct {
	InmateID  id.InmateID   `json:"inmate_id"`
	VisitorID id.VisitorID  `json:"visitor_id"`
	Date      time.Time     `json:"date"`
	Slot      calendar.Slot `json:"slot"`
}

// Validate rejects malformed requests before any evidence is gathered.
func (r *VisitRequest) Validate() error {
	if r.InmateID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "inmate id is required")
	}
	if r.VisitorID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "visitor id is required")
	}
	if r.Date.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "visit date is required")
	}
	if err := r.Slot.Validate(); err != nil {
		return err
	}
	r.Date = calendar.DateOf(r.Date)
	return nil
}

// StartsAt anchors the requested slot on the visit date. Authorization and
// restriction checks are evaluated against this instant.
func (r VisitRequest) StartsAt() time.Time {
	return r.Slot.Start.At(r.Date)
}

// VisitRecord is one immutable ledger entry. Rejected records keep the
// reason and detail; admitted records keep the bcrypt hash of the gate
// pass code.
//
// PassCodeHash never leaves the engine: the json tag excludes it and
// handlers build response DTOs. PassCode is transient; it is set only on
// the record Evaluate returns for an admission and is never persisted.
type VisitRecord struct {
	ID           id.VisitID      `json:"id"`
	InmateID     id.InmateID     `json:"inmate_id"`
	VisitorID    id.VisitorID    `json:"visitor_id"`
	Date         time.Time       `json:"date"`
	Slot         calendar.Slot   `json:"slot"`
	Decision     Decision        `json:"decision"`
	Reason       RejectionReason `json:"reason,omitempty"`
	Detail       string          `json:"detail,omitempty"`
	DecidedAt    time.Time       `json:"decided_at"`
	PassCodeHash string          `json:"-"`
	PassCode     string          `json:"-"`
}

// Admitted reports whether the record represents an admitted visit.
func (r *VisitRecord) Admitted() bool {
	return r.Decision == DecisionAdmitted
}

// Clone returns an independent copy so callers cannot mutate ledger state.
func (r *VisitRecord) Clone() *VisitRecord {
	clone := *r
	return &clone
}
