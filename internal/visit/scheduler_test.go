package visit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	"github.com/JIATech/SIGVIP-sub002/internal/authorization"
	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	"github.com/JIATech/SIGVIP-sub002/internal/restriction"
	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	"github.com/JIATech/SIGVIP-sub002/internal/visit"
	"github.com/JIATech/SIGVIP-sub002/internal/visit/mocks"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

var visitDate = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC) // a Monday

func openAllWeek(t *testing.T) calendar.VisitingRules {
	t.Helper()
	rules, err := calendar.NewVisitingRules(
		[]time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		calendar.TimeOfDay(7*60), calendar.TimeOfDay(16*60),
	)
	require.NoError(t, err)
	return rules
}

// recordingPublisher captures audit events. Emit is called from Evaluate
// goroutines in the parallel tests, so it locks.
type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
}

func (p *recordingPublisher) Emit(_ context.Context, base audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, base)
	return nil
}

func (p *recordingPublisher) byAction(action audit.Action) []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []audit.Event
	for _, event := range p.events {
		if event.Action == action {
			matched = append(matched, event)
		}
	}
	return matched
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type schedulerFixture struct {
	t         *testing.T
	store     *roster.InMemoryStore
	auths     *authorization.Service
	bans      *restriction.Service
	ledger    *visit.InMemoryLedger
	publisher *recordingPublisher
	scheduler *visit.Scheduler
	inmate    *roster.Inmate
	visitor   *roster.Visitor
}

// newSchedulerFixture wires the scheduler against real in-memory stores:
// an establishment open every day 07:00-16:00, one active inmate, and one
// visitor already authorized for them.
func newSchedulerFixture(t *testing.T, oneVisitPerDay bool) *schedulerFixture {
	t.Helper()
	ctx := context.Background()
	registeredAt := visitDate.AddDate(0, -1, 0)

	store := roster.NewInMemoryStore()
	establishment, err := roster.NewEstablishment(id.EstablishmentID(uuid.New()), "Unidad 9", openAllWeek(t), oneVisitPerDay, registeredAt)
	require.NoError(t, err)
	require.NoError(t, store.SaveEstablishment(ctx, establishment))

	inmate, err := roster.NewInmate(id.InmateID(uuid.New()), "LP-2024-0107", "B", 2, registeredAt)
	require.NoError(t, err)
	require.NoError(t, store.CreateInmate(ctx, inmate))

	visitor, err := roster.NewVisitor(id.VisitorID(uuid.New()), "30123456", "María González", registeredAt)
	require.NoError(t, err)
	require.NoError(t, store.CreateVisitor(ctx, visitor))

	auths := authorization.NewService(authorization.NewInMemoryStore(), store)
	_, err = auths.Grant(ctx, inmate.ID, visitor.ID, "madre", registeredAt, nil)
	require.NoError(t, err)

	bans := restriction.NewService(restriction.NewIndex(), store)
	publisher := &recordingPublisher{}
	ledger := visit.NewInMemoryLedger()
	scheduler := visit.NewScheduler(store, auths, bans, ledger,
		visit.WithAuditPublisher(publisher),
	)

	return &schedulerFixture{
		t:         t,
		store:     store,
		auths:     auths,
		bans:      bans,
		ledger:    ledger,
		publisher: publisher,
		scheduler: scheduler,
		inmate:    inmate,
		visitor:   visitor,
	}
}

func (f *schedulerFixture) request(start, end calendar.TimeOfDay) visit.VisitRequest {
	return visit.VisitRequest{
		InmateID:  f.inmate.ID,
		VisitorID: f.visitor.ID,
		Date:      visitDate,
		Slot:      calendar.Slot{Start: start, End: end},
	}
}

// addAuthorizedVisitor registers and authorizes one more visitor for the
// fixture inmate.
func (f *schedulerFixture) addAuthorizedVisitor(nationalID, fullName string) *roster.Visitor {
	f.t.Helper()
	ctx := context.Background()

	visitor, err := roster.NewVisitor(id.VisitorID(uuid.New()), nationalID, fullName, visitDate.AddDate(0, -1, 0))
	require.NoError(f.t, err)
	require.NoError(f.t, f.store.CreateVisitor(ctx, visitor))
	_, err = f.auths.Grant(ctx, f.inmate.ID, visitor.ID, "hermano", visitDate.AddDate(0, -1, 0), nil)
	require.NoError(f.t, err)
	return visitor
}

func TestScheduler_AdmitsAndIssuesPass(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	record, err := f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(10*60+30)))
	require.NoError(t, err)

	assert.Equal(t, visit.DecisionAdmitted, record.Decision)
	assert.Empty(t, record.Reason)
	assert.False(t, record.ID.IsNil())
	assert.Equal(t, visitDate, record.Date)

	require.NotEmpty(t, record.PassCode, "the plain pass code is returned exactly once, on admission")
	require.NotEmpty(t, record.PassCodeHash)
	ok, err := visit.VerifyPassCode(record.PassCode, record.PassCodeHash)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := f.ledger.FindByInmateAndDate(ctx, f.inmate.ID, visitDate)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Empty(t, stored[0].PassCode, "the ledger keeps only the hash")
	assert.NotEmpty(t, stored[0].PassCodeHash)

	admitted := f.publisher.byAction(audit.ActionVisitAdmitted)
	require.Len(t, admitted, 1)
	assert.Equal(t, record.ID.String(), admitted[0].Subject)
	assert.Equal(t, string(visit.DecisionAdmitted), admitted[0].Decision)
}

func TestScheduler_RejectionsAreRecordsNotErrors(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	record, err := f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(17*60), calendar.TimeOfDay(17*60+30)))
	require.NoError(t, err, "a rejection is an outcome, not a failure")

	assert.Equal(t, visit.DecisionRejected, record.Decision)
	assert.Equal(t, visit.ReasonOutsideVisitingHours, record.Reason)
	assert.Equal(t, "establishment receives visitors 07:00 to 16:00", record.Detail)
	assert.Empty(t, record.PassCode)
	assert.Empty(t, record.PassCodeHash)

	stored, err := f.ledger.FindByInmateAndDate(ctx, f.inmate.ID, visitDate)
	require.NoError(t, err)
	require.Len(t, stored, 1, "rejections are appended to the ledger too")

	rejected := f.publisher.byAction(audit.ActionVisitRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, string(visit.ReasonOutsideVisitingHours), rejected[0].Reason)
}

func TestScheduler_RejectsUnauthorizedPair(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	stranger, err := roster.NewVisitor(id.VisitorID(uuid.New()), "27999888", "Pedro Ruiz", visitDate.AddDate(0, -1, 0))
	require.NoError(t, err)
	require.NoError(t, f.store.CreateVisitor(ctx, stranger))

	req := f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(11*60))
	req.VisitorID = stranger.ID

	record, err := f.scheduler.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, visit.DecisionRejected, record.Decision)
	assert.Equal(t, visit.ReasonNotAuthorized, record.Reason)
}

func TestScheduler_RestrictionBlocksAuthorizedVisit(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	until := visitDate.AddDate(0, 0, 1)
	_, err := f.bans.Add(ctx, restriction.Params{
		InmateID: &f.inmate.ID,
		Reason:   "sanción disciplinaria",
		StartsAt: visitDate,
		EndsAt:   &until,
	})
	require.NoError(t, err)

	record, err := f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(11*60)))
	require.NoError(t, err)
	assert.Equal(t, visit.DecisionRejected, record.Decision)
	assert.Equal(t, visit.ReasonRestricted, record.Reason, "an active restriction rejects even an authorized in-hours visit")
	assert.Equal(t, "sanción disciplinaria", record.Detail)
}

func TestScheduler_RejectsUnknownAndInactiveParties(t *testing.T) {
	ctx := context.Background()

	t.Run("unregistered pair", func(t *testing.T) {
		f := newSchedulerFixture(t, false)
		req := visit.VisitRequest{
			InmateID:  id.InmateID(uuid.New()),
			VisitorID: id.VisitorID(uuid.New()),
			Date:      visitDate,
			Slot:      calendar.Slot{Start: calendar.TimeOfDay(10 * 60), End: calendar.TimeOfDay(11 * 60)},
		}

		record, err := f.scheduler.Evaluate(ctx, req)
		require.NoError(t, err, "an unknown party is a rejection, not a lookup failure")
		assert.Equal(t, visit.ReasonPartyInactive, record.Reason)
		assert.Equal(t, "inmate is not registered", record.Detail)
	})

	t.Run("deactivated inmate", func(t *testing.T) {
		f := newSchedulerFixture(t, false)
		f.inmate.Status = roster.StatusInactive
		require.NoError(t, f.store.UpdateInmate(ctx, f.inmate))

		record, err := f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(11*60)))
		require.NoError(t, err)
		assert.Equal(t, visit.ReasonPartyInactive, record.Reason)
		assert.Equal(t, "inmate is inactive", record.Detail)
	})
}

func TestScheduler_RetryAfterAdmissionConflicts(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()
	req := f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(10*60+30))

	first, err := f.scheduler.Evaluate(ctx, req)
	require.NoError(t, err)
	require.Equal(t, visit.DecisionAdmitted, first.Decision)

	second, err := f.scheduler.Evaluate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, visit.DecisionRejected, second.Decision)
	assert.Equal(t, visit.ReasonDuplicateOrConflict, second.Reason)
	assert.Contains(t, second.Detail, first.ID.String())

	stored, err := f.ledger.FindByInmateAndDate(ctx, f.inmate.ID, visitDate)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, first.ID, stored[0].ID, "records come back decided-at ascending")
}

func TestScheduler_DuplicatePolicy(t *testing.T) {
	ctx := context.Background()
	morning := calendar.Slot{Start: calendar.TimeOfDay(9 * 60), End: calendar.TimeOfDay(10 * 60)}
	midday := calendar.Slot{Start: calendar.TimeOfDay(11 * 60), End: calendar.TimeOfDay(12 * 60)}

	t.Run("one visit per day blocks a second visitor in a free slot", func(t *testing.T) {
		f := newSchedulerFixture(t, true)
		second := f.addAuthorizedVisitor("28555444", "Jorge González")

		first, err := f.scheduler.Evaluate(ctx, visit.VisitRequest{InmateID: f.inmate.ID, VisitorID: f.visitor.ID, Date: visitDate, Slot: morning})
		require.NoError(t, err)
		require.Equal(t, visit.DecisionAdmitted, first.Decision)

		record, err := f.scheduler.Evaluate(ctx, visit.VisitRequest{InmateID: f.inmate.ID, VisitorID: second.ID, Date: visitDate, Slot: midday})
		require.NoError(t, err)
		assert.Equal(t, visit.ReasonDuplicateOrConflict, record.Reason)
	})

	t.Run("without the policy a second visitor in a free slot is admitted", func(t *testing.T) {
		f := newSchedulerFixture(t, false)
		second := f.addAuthorizedVisitor("28555444", "Jorge González")

		first, err := f.scheduler.Evaluate(ctx, visit.VisitRequest{InmateID: f.inmate.ID, VisitorID: f.visitor.ID, Date: visitDate, Slot: morning})
		require.NoError(t, err)
		require.Equal(t, visit.DecisionAdmitted, first.Decision)

		record, err := f.scheduler.Evaluate(ctx, visit.VisitRequest{InmateID: f.inmate.ID, VisitorID: second.ID, Date: visitDate, Slot: midday})
		require.NoError(t, err)
		assert.Equal(t, visit.DecisionAdmitted, record.Decision)
	})

	t.Run("overlapping slots conflict regardless of policy", func(t *testing.T) {
		f := newSchedulerFixture(t, false)
		second := f.addAuthorizedVisitor("28555444", "Jorge González")
		overlapping := calendar.Slot{Start: calendar.TimeOfDay(9*60 + 30), End: calendar.TimeOfDay(10*60 + 30)}

		_, err := f.scheduler.Evaluate(ctx, visit.VisitRequest{InmateID: f.inmate.ID, VisitorID: f.visitor.ID, Date: visitDate, Slot: morning})
		require.NoError(t, err)

		record, err := f.scheduler.Evaluate(ctx, visit.VisitRequest{InmateID: f.inmate.ID, VisitorID: second.ID, Date: visitDate, Slot: overlapping})
		require.NoError(t, err)
		assert.Equal(t, visit.ReasonDuplicateOrConflict, record.Reason)
	})
}

// TestScheduler_ParallelRequestsAdmitExactlyOne drives concurrent requests
// for the same inmate through the per-inmate critical section. Under the
// one-visit-per-day policy exactly one may win, whatever the interleaving.
func TestScheduler_ParallelRequestsAdmitExactlyOne(t *testing.T) {
	f := newSchedulerFixture(t, true)
	ctx := context.Background()

	const parallel = 6
	visitors := make([]*roster.Visitor, parallel)
	visitors[0] = f.visitor
	nationalIDs := []string{"", "20111222", "21333444", "22555666", "23777888", "24999000"}
	for i := 1; i < parallel; i++ {
		visitors[i] = f.addAuthorizedVisitor(nationalIDs[i], "Visitante Paralelo")
	}

	records := make([]*visit.VisitRecord, parallel)
	errs := make([]error, parallel)
	var wg sync.WaitGroup
	for i := 0; i < parallel; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := calendar.TimeOfDay((8 + i) * 60)
			records[i], errs[i] = f.scheduler.Evaluate(ctx, visit.VisitRequest{
				InmateID:  f.inmate.ID,
				VisitorID: visitors[i].ID,
				Date:      visitDate,
				Slot:      calendar.Slot{Start: start, End: start + 30},
			})
		}(i)
	}
	wg.Wait()

	admitted := 0
	for i := 0; i < parallel; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, records[i])
		if records[i].Admitted() {
			admitted++
		} else {
			assert.Equal(t, visit.ReasonDuplicateOrConflict, records[i].Reason)
		}
	}
	assert.Equal(t, 1, admitted)

	stored, err := f.ledger.FindByInmateAndDate(ctx, f.inmate.ID, visitDate)
	require.NoError(t, err)
	assert.Len(t, stored, parallel, "every evaluation leaves a record")
}

func TestScheduler_ExpiredContextWritesNothing(t *testing.T) {
	f := newSchedulerFixture(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	record, err := f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(11*60)))
	require.Nil(t, record)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))

	stored, err := f.ledger.FindByInmateAndDate(context.Background(), f.inmate.ID, visitDate)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Zero(t, f.publisher.count())
}

func TestScheduler_InvalidRequestIsRejectedUpFront(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	req := f.request(calendar.TimeOfDay(11*60), calendar.TimeOfDay(10*60))
	record, err := f.scheduler.Evaluate(ctx, req)
	require.Nil(t, record)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	stored, err := f.ledger.FindByInmateAndDate(ctx, f.inmate.ID, visitDate)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestScheduler_LedgerFailureSurfacesStorageCode(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedger(ctrl)
	ledger.EXPECT().FindByInmateAndDate(gomock.Any(), f.inmate.ID, visitDate).Return(nil, nil)
	ledger.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

	scheduler := visit.NewScheduler(f.store, f.auths, f.bans, ledger, visit.WithAuditPublisher(f.publisher))

	record, err := scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(11*60)))
	require.Nil(t, record)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStorage))
	assert.Zero(t, f.publisher.count(), "a failed append reports nothing")
}

func TestScheduler_VerifyPass(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	record, err := f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(10*60), calendar.TimeOfDay(10*60+30)))
	require.NoError(t, err)
	require.Equal(t, visit.DecisionAdmitted, record.Decision)

	t.Run("issued code verifies", func(t *testing.T) {
		valid, err := f.scheduler.VerifyPass(ctx, f.visitor.ID, f.inmate.ID, visitDate, record.PassCode)
		require.NoError(t, err)
		assert.True(t, valid)

		verified := f.publisher.byAction(audit.ActionGatePassVerified)
		require.NotEmpty(t, verified)
		assert.Equal(t, record.ID.String(), verified[0].Subject)
		assert.Equal(t, "valid", verified[0].Decision)
	})

	t.Run("wrong code is invalid, not an error", func(t *testing.T) {
		valid, err := f.scheduler.VerifyPass(ctx, f.visitor.ID, f.inmate.ID, visitDate, "counterfeit")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("pair without an admitted visit is invalid", func(t *testing.T) {
		valid, err := f.scheduler.VerifyPass(ctx, id.VisitorID(uuid.New()), f.inmate.ID, visitDate, record.PassCode)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("empty code is invalid input", func(t *testing.T) {
		_, err := f.scheduler.VerifyPass(ctx, f.visitor.ID, f.inmate.ID, visitDate, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestScheduler_ListByInmateAndDate(t *testing.T) {
	f := newSchedulerFixture(t, false)
	ctx := context.Background()

	_, err := f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(9*60), calendar.TimeOfDay(10*60)))
	require.NoError(t, err)
	_, err = f.scheduler.Evaluate(ctx, f.request(calendar.TimeOfDay(17*60), calendar.TimeOfDay(18*60)))
	require.NoError(t, err)

	// The date argument may carry a time of day; the lookup normalizes it.
	records, err := f.scheduler.ListByInmateAndDate(ctx, f.inmate.ID, visitDate.Add(13*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, visit.DecisionAdmitted, records[0].Decision)
	assert.Equal(t, visit.DecisionRejected, records[1].Decision)
}
