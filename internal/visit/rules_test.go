package visit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	"github.com/JIATech/SIGVIP-sub002/internal/restriction"
	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

var mondayJune10 = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

func allWeekRules(t *testing.T) calendar.VisitingRules {
	t.Helper()
	rules, err := calendar.NewVisitingRules(
		[]time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		calendar.TimeOfDay(7*60), calendar.TimeOfDay(16*60),
	)
	require.NoError(t, err)
	return rules
}

// ruleFixture returns a request and evidence that pass every rule, so each
// test flips exactly the fact it is about.
func ruleFixture(t *testing.T) (VisitRequest, *Evidence) {
	t.Helper()
	now := mondayJune10.Add(-24 * time.Hour)

	establishment, err := roster.NewEstablishment(id.EstablishmentID(uuid.New()), "Unidad 1", allWeekRules(t), false, now)
	require.NoError(t, err)
	inmate, err := roster.NewInmate(id.InmateID(uuid.New()), "LP-2024-0001", "A", 1, now)
	require.NoError(t, err)
	visitor, err := roster.NewVisitor(id.VisitorID(uuid.New()), "30123456", "María González", now)
	require.NoError(t, err)

	req := VisitRequest{
		InmateID:  inmate.ID,
		VisitorID: visitor.ID,
		Date:      mondayJune10,
		Slot:      calendar.Slot{Start: calendar.TimeOfDay(10 * 60), End: calendar.TimeOfDay(10*60 + 30)},
	}
	evidence := &Evidence{
		Establishment: establishment,
		Inmate:        inmate,
		Visitor:       visitor,
		Authorized:    true,
	}
	return req, evidence
}

func TestEvaluateDecision_Admitted(t *testing.T) {
	req, evidence := ruleFixture(t)

	outcome := EvaluateDecision(req, evidence)
	require.Equal(t, DecisionAdmitted, outcome)

	record := BuildRecord(req, outcome, evidence, mondayJune10.Add(9*time.Hour))
	assert.Equal(t, DecisionAdmitted, record.Decision)
	assert.Empty(t, record.Reason)
	assert.Empty(t, record.Detail)
	assert.Equal(t, req.InmateID, record.InmateID)
	assert.Equal(t, req.Date, record.Date)
}

func TestEvaluateDecision_FirstFailingRuleNamesTheRejection(t *testing.T) {
	decidedAt := mondayJune10.Add(9 * time.Hour)

	t.Run("unregistered inmate", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Inmate = nil

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, decidedAt)
		require.Equal(t, DecisionRejected, record.Decision)
		assert.Equal(t, ReasonPartyInactive, record.Reason)
		assert.Equal(t, "inmate is not registered", record.Detail)
	})

	t.Run("inactive inmate", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Inmate.Status = roster.StatusInactive

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, decidedAt)
		require.Equal(t, DecisionRejected, record.Decision)
		assert.Equal(t, ReasonPartyInactive, record.Reason)
		assert.Equal(t, "inmate is inactive", record.Detail)
	})

	t.Run("inactive visitor", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Visitor.Status = roster.StatusInactive

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, decidedAt)
		require.Equal(t, DecisionRejected, record.Decision)
		assert.Equal(t, ReasonPartyInactive, record.Reason)
		assert.Equal(t, "visitor is inactive", record.Detail)
	})

	t.Run("evening slot outside hours", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		req.Slot = calendar.Slot{Start: calendar.TimeOfDay(17 * 60), End: calendar.TimeOfDay(17*60 + 30)}

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, decidedAt)
		require.Equal(t, DecisionRejected, record.Decision)
		assert.Equal(t, ReasonOutsideVisitingHours, record.Reason)
		assert.Equal(t, "establishment receives visitors 07:00 to 16:00", record.Detail)
	})

	t.Run("no authorization", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Authorized = false

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, decidedAt)
		require.Equal(t, DecisionRejected, record.Decision)
		assert.Equal(t, ReasonNotAuthorized, record.Reason)
	})

	t.Run("active restriction", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Restrictions = []*restriction.Restriction{
			{ID: 2, Reason: "sanción disciplinaria", Status: restriction.StatusActive},
			{ID: 1, Reason: "older ban", Status: restriction.StatusActive},
		}

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, decidedAt)
		require.Equal(t, DecisionRejected, record.Decision)
		assert.Equal(t, ReasonRestricted, record.Reason)
		assert.Equal(t, "sanción disciplinaria", record.Detail, "newest restriction names the rejection")
	})

	t.Run("duplicate admitted visit", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		prior := &VisitRecord{
			ID:        id.VisitID(uuid.New()),
			VisitorID: req.VisitorID,
			Slot:      calendar.Slot{Start: calendar.TimeOfDay(11 * 60), End: calendar.TimeOfDay(12 * 60)},
			Decision:  DecisionAdmitted,
		}
		evidence.PriorVisits = []*VisitRecord{prior}

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, decidedAt)
		require.Equal(t, DecisionRejected, record.Decision)
		assert.Equal(t, ReasonDuplicateOrConflict, record.Reason)
		assert.Contains(t, record.Detail, prior.ID.String())
	})
}

func TestEvaluateDecision_RulePrecedence(t *testing.T) {
	t.Run("outside hours wins over authorization and restriction state", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		req.Slot = calendar.Slot{Start: calendar.TimeOfDay(17 * 60), End: calendar.TimeOfDay(17*60 + 30)}
		evidence.Authorized = false
		evidence.Restrictions = []*restriction.Restriction{{ID: 1, Reason: "ban", Status: restriction.StatusActive}}

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, mondayJune10)
		assert.Equal(t, ReasonOutsideVisitingHours, record.Reason)
	})

	t.Run("restriction rejects even when authorized and in hours", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Restrictions = []*restriction.Restriction{{ID: 1, Reason: "ban", Status: restriction.StatusActive}}

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, mondayJune10)
		assert.Equal(t, ReasonRestricted, record.Reason)
	})

	t.Run("inactive party wins over everything", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Inmate.Status = roster.StatusInactive
		evidence.Authorized = false
		evidence.Restrictions = []*restriction.Restriction{{ID: 1, Reason: "ban", Status: restriction.StatusActive}}

		record := BuildRecord(req, EvaluateDecision(req, evidence), evidence, mondayJune10)
		assert.Equal(t, ReasonPartyInactive, record.Reason)
	})
}

func TestConflictingVisit_DuplicatePolicy(t *testing.T) {
	otherVisitor := id.VisitorID(uuid.New())
	morning := calendar.Slot{Start: calendar.TimeOfDay(8 * 60), End: calendar.TimeOfDay(9 * 60)}
	overlapping := calendar.Slot{Start: calendar.TimeOfDay(10 * 60), End: calendar.TimeOfDay(11 * 60)}

	t.Run("one visit per day blocks any second admission", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.Establishment.OneVisitPerDay = true
		evidence.PriorVisits = []*VisitRecord{{VisitorID: otherVisitor, Slot: morning, Decision: DecisionAdmitted}}

		assert.NotNil(t, evidence.ConflictingVisit(req))
	})

	t.Run("distinct visitor in a free slot is admitted", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.PriorVisits = []*VisitRecord{{VisitorID: otherVisitor, Slot: morning, Decision: DecisionAdmitted}}

		assert.Nil(t, evidence.ConflictingVisit(req))
		assert.Equal(t, DecisionAdmitted, EvaluateDecision(req, evidence))
	})

	t.Run("distinct visitor in an overlapping slot conflicts", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.PriorVisits = []*VisitRecord{{VisitorID: otherVisitor, Slot: overlapping, Decision: DecisionAdmitted}}

		assert.NotNil(t, evidence.ConflictingVisit(req))
	})

	t.Run("same pair conflicts even in a free slot", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.PriorVisits = []*VisitRecord{{VisitorID: req.VisitorID, Slot: morning, Decision: DecisionAdmitted}}

		assert.NotNil(t, evidence.ConflictingVisit(req))
	})

	t.Run("rejected records never conflict", func(t *testing.T) {
		req, evidence := ruleFixture(t)
		evidence.PriorVisits = []*VisitRecord{
			{VisitorID: req.VisitorID, Slot: req.Slot, Decision: DecisionRejected, Reason: ReasonNotAuthorized},
		}

		assert.Nil(t, evidence.ConflictingVisit(req))
		assert.Equal(t, DecisionAdmitted, EvaluateDecision(req, evidence))
	})
}

func TestVisitRequest_Validate(t *testing.T) {
	base := func() VisitRequest {
		return VisitRequest{
			InmateID:  id.InmateID(uuid.New()),
			VisitorID: id.VisitorID(uuid.New()),
			Date:      mondayJune10.Add(13 * time.Hour), // mid-afternoon instant
			Slot:      calendar.Slot{Start: calendar.TimeOfDay(10 * 60), End: calendar.TimeOfDay(11 * 60)},
		}
	}

	t.Run("normalizes date to midnight UTC", func(t *testing.T) {
		req := base()
		require.NoError(t, req.Validate())
		assert.Equal(t, mondayJune10, req.Date)
	})

	t.Run("rejects nil ids, zero date, reversed slot", func(t *testing.T) {
		req := base()
		req.InmateID = id.InmateID{}
		require.Error(t, req.Validate())

		req = base()
		req.VisitorID = id.VisitorID{}
		require.Error(t, req.Validate())

		req = base()
		req.Date = time.Time{}
		require.Error(t, req.Validate())

		req = base()
		req.Slot = calendar.Slot{Start: calendar.TimeOfDay(11 * 60), End: calendar.TimeOfDay(10 * 60)}
		require.Error(t, req.Validate())
	})

	t.Run("StartsAt anchors the slot on the date", func(t *testing.T) {
		req := base()
		require.NoError(t, req.Validate())
		assert.Equal(t, mondayJune10.Add(10*time.Hour), req.StartsAt())
	})
}
