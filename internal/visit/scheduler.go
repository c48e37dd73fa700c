package visit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	"github.com/JIATech/SIGVIP-sub002/internal/restriction"
	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	"github.com/JIATech/SIGVIP-sub002/internal/visit/metrics"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// evidenceTimeout bounds the parallel evidence gather. Every source is an
// in-process store or a single indexed query, so this is generous.
const evidenceTimeout = 2 * time.Second

// RosterDirectory is the slice of the roster the scheduler reads.
type RosterDirectory interface {
	Establishment(ctx context.Context) (*roster.Establishment, error)
	FindInmateByID(ctx context.Context, inmateID id.InmateID) (*roster.Inmate, error)
	FindVisitorByID(ctx context.Context, visitorID id.VisitorID) (*roster.Visitor, error)
}

// AuthorizationChecker answers whether a pair may visit at an instant.
type AuthorizationChecker interface {
	IsAuthorized(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID, at time.Time) (bool, error)
}

// RestrictionSource lists the active restrictions blocking a pair.
type RestrictionSource interface {
	ActiveAt(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID, at time.Time) ([]*restriction.Restriction, error)
}

// AuditPublisher is the slice of the audit pipeline the scheduler needs.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Scheduler runs the admission decision end to end: lock, gather, decide,
// append, report. All collaborators are injected at construction.
type Scheduler struct {
	roster         RosterDirectory
	authorizations AuthorizationChecker
	restrictions   RestrictionSource
	ledger         Ledger
	locks          *lockTable
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(s *Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Scheduler) {
		s.auditPublisher = publisher
	}
}

// NewScheduler constructs a Scheduler.
func NewScheduler(directory RosterDirectory, authorizations AuthorizationChecker, restrictions RestrictionSource, ledger Ledger, opts ...Option) *Scheduler {
	s := &Scheduler{
		roster:         directory,
		authorizations: authorizations,
		restrictions:   restrictions,
		ledger:         ledger,
		locks:          newLockTable(),
		tracer:         otel.Tracer("sigvip/visit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate decides one visit request and appends the outcome to the
// ledger. Rejections come back as REJECTED records with a nil error;
// errors mean the evaluation itself could not run.
//
// The whole of gather-decide-append holds the inmate's lock, so two
// racing requests for the same inmate serialize and the second one sees
// the first one's record in the duplicate check. If the caller's context
// expires before the lock is acquired, nothing is written.
func (s *Scheduler) Evaluate(ctx context.Context, req VisitRequest) (*VisitRecord, error) {
	ctx, span := s.tracer.Start(ctx, "visit.evaluate")
	defer span.End()

	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("visit.inmate_id", req.InmateID.String()),
		attribute.String("visit.date", req.Date.Format("2006-01-02")),
	)

	unlock, err := s.locks.Acquire(ctx, req.InmateID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	evidence, err := s.gatherEvidence(ctx, req)
	if err != nil {
		return nil, err
	}

	outcome := EvaluateDecision(req, evidence)
	record := BuildRecord(req, outcome, evidence, requestcontext.Now(ctx))

	var passCode string
	if outcome == DecisionAdmitted {
		passCode, err = GeneratePassCode()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue gate pass")
		}
		record.PassCodeHash, err = HashPassCode(passCode)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue gate pass")
		}
	}

	appended, err := s.ledger.Append(ctx, record)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "ledger append failed")
	}
	// The pass code rides only on the returned copy, never on stored state.
	appended.PassCode = passCode

	span.SetAttributes(attribute.String("visit.decision", string(appended.Decision)))
	s.metrics.IncrementOutcome(string(appended.Decision), string(appended.Reason))
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	s.reportDecision(ctx, appended)

	return appended, nil
}

// VerifyPass checks a gate pass code presented at the entrance against
// the pair's admitted visit for the date. Wrong codes and non-admitted
// visits report invalid; only infrastructure failures error.
func (s *Scheduler) VerifyPass(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, date time.Time, code string) (bool, error) {
	if code == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "pass code is required")
	}

	records, err := s.ledger.FindByVisitorAndInmateAndDate(ctx, visitorID, inmateID, calendar.DateOf(date))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeStorage, "ledger lookup failed")
	}

	for _, record := range records {
		if !record.Admitted() || record.PassCodeHash == "" {
			continue
		}
		ok, err := VerifyPassCode(code, record.PassCodeHash)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "pass verification failed")
		}
		if ok {
			s.metrics.IncrementPassVerification("valid")
			s.emitAudit(ctx, audit.ActionGatePassVerified, record.ID.String(), "valid", "")
			return true, nil
		}
	}

	s.metrics.IncrementPassVerification("invalid")
	s.emitAudit(ctx, audit.ActionGatePassVerified, "", "invalid", "")
	return false, nil
}

// ListByInmateAndDate returns the inmate's ledger records for a date,
// decided-at ascending.
func (s *Scheduler) ListByInmateAndDate(ctx context.Context, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error) {
	records, err := s.ledger.FindByInmateAndDate(ctx, inmateID, calendar.DateOf(date))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "ledger lookup failed")
	}
	return records, nil
}

func (s *Scheduler) reportDecision(ctx context.Context, record *VisitRecord) {
	action := audit.ActionVisitAdmitted
	if !record.Admitted() {
		action = audit.ActionVisitRejected
	}
	s.emitAudit(ctx, action, record.ID.String(), string(record.Decision), string(record.Reason),
		"inmate_id", record.InmateID.String(),
		"visitor_id", record.VisitorID.String(),
		"date", record.Date.Format("2006-01-02"),
		"slot", record.Slot.String(),
	)
}

func (s *Scheduler) emitAudit(ctx context.Context, action audit.Action, subject, decision, reason string, attributes ...any) {
	if s.logger != nil {
		args := append(attributes, "subject", subject, "event", string(action), "log_type", "audit")
		if decision != "" {
			args = append(args, "decision", decision)
		}
		if reason != "" {
			args = append(args, "reason", reason)
		}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		s.logger.InfoContext(ctx, string(action), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Action:   action,
		Subject:  subject,
		Decision: decision,
		Reason:   reason,
	})
}

// gatherEvidence orchestrates parallel evidence gathering with shared
// context cancellation. A missing party is evidence, not a failure; the
// errgroup only fails on infrastructure errors.
func (s *Scheduler) gatherEvidence(ctx context.Context, req VisitRequest) (*Evidence, error) {
	ctx, cancel := context.WithTimeout(ctx, evidenceTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	evidence := &Evidence{
		GatheredAt: time.Now(),
	}

	s.gatherPartyEvidence(ctx, g, evidence, req)
	s.gatherHistoryEvidence(ctx, g, evidence, req)

	// Wait for all goroutines with early cancellation on first failure
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return evidence, nil
}

func (s *Scheduler) gatherPartyEvidence(
	ctx context.Context,
	g *errgroup.Group,
	evidence *Evidence,
	req VisitRequest,
) {
	// Fetch the establishment and its visiting rules
	g.Go(func() error {
		start := time.Now()
		establishment, err := s.roster.Establishment(ctx)
		evidence.Latencies.Establishment = time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveEvidenceLatency("establishment", evidence.Latencies.Establishment)
		}

		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeInternal, "establishment is not configured")
			}
			return dErrors.Wrap(err, dErrors.CodeStorage, "establishment lookup failed")
		}
		evidence.Establishment = establishment
		return nil
	})

	// Fetch the inmate record (missing means rule 1 rejects)
	g.Go(func() error {
		start := time.Now()
		inmate, err := s.roster.FindInmateByID(ctx, req.InmateID)
		evidence.Latencies.Inmate = time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveEvidenceLatency("inmate", evidence.Latencies.Inmate)
		}

		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeStorage, "inmate lookup failed")
		}
		evidence.Inmate = inmate
		return nil
	})

	// Fetch the visitor record (missing means rule 1 rejects)
	g.Go(func() error {
		start := time.Now()
		visitor, err := s.roster.FindVisitorByID(ctx, req.VisitorID)
		evidence.Latencies.Visitor = time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveEvidenceLatency("visitor", evidence.Latencies.Visitor)
		}

		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeStorage, "visitor lookup failed")
		}
		evidence.Visitor = visitor
		return nil
	})
}

func (s *Scheduler) gatherHistoryEvidence(
	ctx context.Context,
	g *errgroup.Group,
	evidence *Evidence,
	req VisitRequest,
) {
	// Check the authorization registry at the slot start
	g.Go(func() error {
		start := time.Now()
		authorized, err := s.authorizations.IsAuthorized(ctx, req.InmateID, req.VisitorID, req.StartsAt())
		evidence.Latencies.Authorization = time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveEvidenceLatency("authorization", evidence.Latencies.Authorization)
		}

		if err != nil {
			return err
		}
		evidence.Authorized = authorized
		return nil
	})

	// Collect active restrictions on either party
	g.Go(func() error {
		start := time.Now()
		active, err := s.restrictions.ActiveAt(ctx, req.InmateID, req.VisitorID, req.StartsAt())
		evidence.Latencies.Restrictions = time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveEvidenceLatency("restrictions", evidence.Latencies.Restrictions)
		}

		if err != nil {
			return err
		}
		evidence.Restrictions = active
		return nil
	})

	// Load the inmate's prior records for the date for the duplicate check
	g.Go(func() error {
		start := time.Now()
		prior, err := s.ledger.FindByInmateAndDate(ctx, req.InmateID, req.Date)
		evidence.Latencies.Ledger = time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveEvidenceLatency("ledger", evidence.Latencies.Ledger)
		}

		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeStorage, "ledger lookup failed")
		}
		evidence.PriorVisits = prior
		return nil
	})
}
