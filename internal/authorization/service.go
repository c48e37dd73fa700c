package authorization

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	"github.com/JIATech/SIGVIP-sub002/internal/roster"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// PartyDirectory is the slice of the roster this service needs: both
// parties must exist before a grant.
type PartyDirectory interface {
	FindInmateByID(ctx context.Context, inmateID id.InmateID) (*roster.Inmate, error)
	FindVisitorByID(ctx context.Context, visitorID id.VisitorID) (*roster.Visitor, error)
}

// AuditPublisher is the slice of the audit pipeline this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates the authorization registry.
type Service struct {
	store          Store
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
func NewService(store Store, directory PartyDirectory, opts ...Option) *Service {
	s := &Service{store: store, directory: directory}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Grant creates an ACTIVE authorization for the pair. Both parties must
// exist; a second ACTIVE authorization for the same pair is a conflict.
func (s *Service) Grant(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID, kinship string, validFrom time.Time, validUntil *time.Time) (*Authorization, error) {
	if _, err := s.directory.FindInmateByID(ctx, inmateID); err != nil {
		return nil, wrapPartyErr(err, "inmate not found")
	}
	if _, err := s.directory.FindVisitorByID(ctx, visitorID); err != nil {
		return nil, wrapPartyErr(err, "visitor not found")
	}

	authorization, err := New(id.AuthorizationID(uuid.New()), inmateID, visitorID, kinship, validFrom, validUntil, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, authorization); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "pair already has an active authorization")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to create authorization")
	}

	s.emitAudit(ctx, audit.ActionAuthorizationGranted, authorization.ID.String(),
		"inmate_id", inmateID.String(),
		"visitor_id", visitorID.String(),
	)
	return authorization, nil
}

// Revoke marks an authorization REVOKED. Revoking one that is already
// revoked is a conflict, not an idempotent no-op, so callers notice
// double submissions.
func (s *Service) Revoke(ctx context.Context, authorizationID id.AuthorizationID) (*Authorization, error) {
	authorization, err := s.store.FindByID(ctx, authorizationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "authorization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load authorization")
	}
	if authorization.Status == StatusRevoked {
		return nil, dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeConflict, "authorization already revoked")
	}

	authorization.ApplyRevocation(requestcontext.Now(ctx))
	if err := s.store.Update(ctx, authorization); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "authorization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to revoke authorization")
	}

	s.emitAudit(ctx, audit.ActionAuthorizationRevoked, authorization.ID.String(),
		"inmate_id", authorization.InmateID.String(),
		"visitor_id", authorization.VisitorID.String(),
	)
	return authorization, nil
}

// IsAuthorized reports whether the pair holds an authorization in force
// at the given instant.
func (s *Service) IsAuthorized(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID, at time.Time) (bool, error) {
	authorization, err := s.store.FindActiveByPair(ctx, inmateID, visitorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeStorage, "failed to check authorization")
	}
	return authorization.CoversAt(at), nil
}

// Get returns one authorization by id.
func (s *Service) Get(ctx context.Context, authorizationID id.AuthorizationID) (*Authorization, error) {
	authorization, err := s.store.FindByID(ctx, authorizationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "authorization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load authorization")
	}
	return authorization, nil
}

// ListByInmate returns all authorizations for an inmate, newest first.
func (s *Service) ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*Authorization, error) {
	authorizations, err := s.store.ListByInmate(ctx, inmateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list authorizations")
	}
	return authorizations, nil
}

// ListByVisitor returns all authorizations held by a visitor, newest first.
func (s *Service) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*Authorization, error) {
	authorizations, err := s.store.ListByVisitor(ctx, visitorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list authorizations")
	}
	return authorizations, nil
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

func wrapPartyErr(err error, notFoundMsg string) error {
	if dErrors.HasCode(err, dErrors.CodeNotFound) || errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeStorage, "party lookup failed")
}
