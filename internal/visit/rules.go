package visit

import (
	"fmt"
	"time"

	"github.com/JIATech/SIGVIP-sub002/internal/restriction"
	"github.com/JIATech/SIGVIP-sub002/internal/roster"
)

// Evidence is everything the rule chain reads, gathered up front by the
// scheduler. Inmate and Visitor are nil when the party is not registered;
// the rules treat a missing party like an inactive one.
type Evidence struct {
	Establishment *roster.Establishment
	Inmate        *roster.Inmate
	Visitor       *roster.Visitor
	Authorized    bool
	Restrictions  []*restriction.Restriction
	PriorVisits   []*VisitRecord

	GatheredAt time.Time
	Latencies  EvidenceLatencies
}

// EvidenceLatencies tracks per-source fetch durations for observability.
type EvidenceLatencies struct {
	Establishment time.Duration
	Inmate        time.Duration
	Visitor       time.Duration
	Authorization time.Duration
	Restrictions  time.Duration
	Ledger        time.Duration
}

// PartiesActive reports whether both parties are registered and ACTIVE.
func (e *Evidence) PartiesActive() bool {
	return e.Inmate != nil && e.Inmate.IsActive() &&
		e.Visitor != nil && e.Visitor.IsActive()
}

// WithinVisitingHours reports whether the requested slot falls on an
// allowed day inside the opening window.
func (e *Evidence) WithinVisitingHours(req VisitRequest) bool {
	ok, err := e.Establishment.Rules.Contains(req.Date, req.Slot)
	if err != nil {
		// The request was validated before evidence gathering, so a
		// malformed slot cannot reach this point.
		return false
	}
	return ok
}

// ConflictingVisit returns the earliest admitted record that blocks the
// request under the establishment's duplicate policy, or nil. PriorVisits
// is ordered by decided-at ascending, which makes the pick deterministic.
func (e *Evidence) ConflictingVisit(req VisitRequest) *VisitRecord {
	for _, prior := range e.PriorVisits {
		if !prior.Admitted() {
			continue
		}
		if e.Establishment.OneVisitPerDay {
			return prior
		}
		// Same pair never admits twice on one date, whatever the slots.
		if prior.VisitorID == req.VisitorID {
			return prior
		}
		if prior.Slot.Overlaps(req.Slot) {
			return prior
		}
	}
	return nil
}

// EvaluateDecision applies the admission rule chain to gathered evidence.
// This is pure domain logic - no I/O, no side effects.
// Rule priority (first failure names the rejection):
//  1. Both parties registered and ACTIVE
//  2. Slot within the establishment's visiting days and hours
//  3. Authorization in force at the slot start
//  4. No active restriction on either party or the pair
//  5. No duplicate or conflicting admitted visit that date
func EvaluateDecision(req VisitRequest, evidence *Evidence) Decision {
	// Rule 1: party status - unknown or inactive parties cannot visit
	if !evidence.PartiesActive() {
		return DecisionRejected
	}

	// Rule 2: visiting window - day and hours set by the establishment
	if !evidence.WithinVisitingHours(req) {
		return DecisionRejected
	}

	// Rule 3: authorization - the pair must hold one in force
	if !evidence.Authorized {
		return DecisionRejected
	}

	// Rule 4: restrictions - any active ban blocks the visit
	if len(evidence.Restrictions) > 0 {
		return DecisionRejected
	}

	// Rule 5: duplicates - establishment policy over the day's ledger
	if evidence.ConflictingVisit(req) != nil {
		return DecisionRejected
	}

	return DecisionAdmitted
}

// BuildRecord constructs the ledger record for an evaluation outcome.
// This is pure domain logic - no I/O, no side effects. For rejections it
// re-walks the rule order to name the first failing rule, so the reason
// always matches what EvaluateDecision tripped on.
func BuildRecord(req VisitRequest, outcome Decision, evidence *Evidence, decidedAt time.Time) *VisitRecord {
	record := &VisitRecord{
		InmateID:  req.InmateID,
		VisitorID: req.VisitorID,
		Date:      req.Date,
		Slot:      req.Slot,
		Decision:  outcome,
		DecidedAt: decidedAt,
	}

	if outcome == DecisionAdmitted {
		return record
	}

	switch {
	case !evidence.PartiesActive():
		record.Reason = ReasonPartyInactive
		record.Detail = partyDetail(evidence)
	case !evidence.WithinVisitingHours(req):
		record.Reason = ReasonOutsideVisitingHours
		record.Detail = fmt.Sprintf("establishment receives visitors %s to %s",
			evidence.Establishment.Rules.Open, evidence.Establishment.Rules.Close)
	case !evidence.Authorized:
		record.Reason = ReasonNotAuthorized
		record.Detail = "no authorization in force for the pair at the requested time"
	case len(evidence.Restrictions) > 0:
		record.Reason = ReasonRestricted
		// Restrictions arrive newest first; the most recent ban names the rejection.
		record.Detail = evidence.Restrictions[0].Reason
	default:
		record.Reason = ReasonDuplicateOrConflict
		if conflict := evidence.ConflictingVisit(req); conflict != nil {
			record.Detail = fmt.Sprintf("conflicts with admitted visit %s at %s", conflict.ID, conflict.Slot)
		}
	}

	return record
}

func partyDetail(evidence *Evidence) string {
	switch {
	case evidence.Inmate == nil:
		return "inmate is not registered"
	case !evidence.Inmate.IsActive():
		return "inmate is inactive"
	case evidence.Visitor == nil:
		return "visitor is not registered"
	default:
		return "visitor is inactive"
	}
}
