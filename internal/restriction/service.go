package restriction

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// PartyDirectory is the slice of the roster this service needs: targets
// must reference registered parties.
type PartyDirectory interface {
	FindInmateByID(ctx context.Context, inmateID id.InmateID) (*roster.Inmate, error)
	FindVisitorByID(ctx context.Context, visitorID id.VisitorID) (*roster.Visitor, error)
}

// AuditPublisher is the slice of the audit pipeline this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates restriction management on top of the index.
type Service struct {
	index          *Index
	directory      PartyDirectory
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// NewService constructs a Service.
func NewService(index *Index, directory PartyDirectory, opts ...Option) *Service {
	s := &Service{index: index, directory: directory}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add places a new restriction. Targets must reference registered
// parties.
func (s *Service) Add(ctx context.Context, params Params) (*Restriction, error) {
	if params.InmateID != nil {
		if _, err := s.directory.FindInmateByID(ctx, *params.InmateID); err != nil {
			return nil, wrapTargetErr(err, "inmate not found")
		}
	}
	if params.VisitorID != nil {
		if _, err := s.directory.FindVisitorByID(ctx, *params.VisitorID); err != nil {
			return nil, wrapTargetErr(err, "visitor not found")
		}
	}

	restriction, err := s.index.Add(params, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	s.emitAudit(ctx, audit.ActionRestrictionAdded, strconv.FormatInt(restriction.ID, 10),
		"reason", restriction.Reason,
	)
	return restriction, nil
}

// Lift ends a restriction early. Lifting one that was already lifted
// reports already_lifted so duplicate submissions surface.
func (s *Service) Lift(ctx context.Context, restrictionID int64) (*Restriction, error) {
	restriction, err := s.index.Lift(restrictionID, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "restriction not found")
		case errors.Is(err, sentinel.ErrAlreadyLifted):
			return nil, dErrors.New(dErrors.CodeAlreadyLifted, "restriction already lifted")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lift restriction")
		}
	}

	s.emitAudit(ctx, audit.ActionRestrictionLifted, strconv.FormatInt(restriction.ID, 10))
	return restriction, nil
}

// Get returns one restriction by id.
func (s *Service) Get(ctx context.Context, restrictionID int64) (*Restriction, error) {
	restriction, err := s.index.Get(restrictionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "restriction not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load restriction")
	}
	return restriction, nil
}

// ActiveAt returns the restrictions blocking the pair at the given
// instant, newest first.
func (s *Service) ActiveAt(_ context.Context, inmateID id.InmateID, visitorID id.VisitorID, at time.Time) ([]*Restriction, error) {
	return s.index.ActiveAt(inmateID, visitorID, at), nil
}

// List returns restrictions matching the optional target filters.
func (s *Service) List(_ context.Context, inmateID *id.InmateID, visitorID *id.VisitorID) ([]*Restriction, error) {
	return s.index.List(inmateID, visitorID), nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, subject string, attributes ...any) {
	if s.logger != nil {
		args := append(attributes, "subject", subject, "event", string(action), "log_type", "audit")
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		s.logger.InfoContext(ctx, string(action), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{Action: action, Subject: subject})
}

func wrapTargetErr(err error, notFoundMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeStorage, "target lookup failed")
}
