package roster

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JIATech/SIGVIP-sub002/internal/audit"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit pipeline this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates roster mutations and lookups.
type Service struct {
	store          Store
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
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Establishment returns the facility this engine serves.
func (s *Service) Establishment(ctx context.Context) (*Establishment, error) {
	establishment, err := s.store.Establishment(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "establishment not configured")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to load establishment")
	}
	return establishment, nil
}

// RegisterInmate adds a new inmate to the census.
func (s *Service) RegisterInmate(ctx context.Context, fileNumber, cellBlock string, floor int) (*Inmate, error) {
	inmate, err := NewInmate(id.InmateID(uuid.New()), fileNumber, cellBlock, floor, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateInmate(ctx, inmate); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "file number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to create inmate")
	}
	s.emitAudit(ctx, audit.ActionInmateRegistered, inmate.ID.String(), "file_number", inmate.FileNumber)
	return inmate, nil
}

// SetInmateStatus activates or deactivates an inmate. Setting the status
// it already has is a conflict, matching the transition rules used for
// visitors.
func (s *Service) SetInmateStatus(ctx context.Context, inmateID id.InmateID, status PartyStatus) (*Inmate, error) {
	inmate, err := s.store.FindInmateByID(ctx, inmateID)
	if err != nil {
		return nil, wrapInmateErr(err)
	}
	if inmate.Status == status {
		return nil, dErrors.New(dErrors.CodeConflict, "inmate already has status "+string(status))
	}
	inmate.Status = status
	inmate.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.UpdateInmate(ctx, inmate); err != nil {
		return nil, wrapInmateErr(err)
	}
	s.emitAudit(ctx, audit.ActionInmateStatusChanged, inmate.ID.String(), "status", string(status))
	return inmate, nil
}

// GetInmate returns one inmate by id.
func (s *Service) GetInmate(ctx context.Context, inmateID id.InmateID) (*Inmate, error) {
	inmate, err := s.store.FindInmateByID(ctx, inmateID)
	if err != nil {
		return nil, wrapInmateErr(err)
	}
	return inmate, nil
}

// ListInmates returns the census ordered by file number.
func (s *Service) ListInmates(ctx context.Context) ([]*Inmate, error) {
	inmates, err := s.store.ListInmates(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list inmates")
	}
	return inmates, nil
}

// RegisterVisitor adds a new visitor record.
func (s *Service) RegisterVisitor(ctx context.Context, nationalID, fullName string) (*Visitor, error) {
	visitor, err := NewVisitor(id.VisitorID(uuid.New()), nationalID, fullName, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateVisitor(ctx, visitor); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "national id already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to create visitor")
	}
	s.emitAudit(ctx, audit.ActionVisitorRegistered, visitor.ID.String(), "national_id", visitor.NationalID)
	return visitor, nil
}

// SetVisitorStatus activates or deactivates a visitor.
func (s *Service) SetVisitorStatus(ctx context.Context, visitorID id.VisitorID, status PartyStatus) (*Visitor, error) {
	visitor, err := s.store.FindVisitorByID(ctx, visitorID)
	if err != nil {
		return nil, wrapVisitorErr(err)
	}
	if visitor.Status == status {
		return nil, dErrors.New(dErrors.CodeConflict, "visitor already has status "+string(status))
	}
	visitor.Status = status
	visitor.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.UpdateVisitor(ctx, visitor); err != nil {
		return nil, wrapVisitorErr(err)
	}
	s.emitAudit(ctx, audit.ActionVisitorStatusChanged, visitor.ID.String(), "status", string(status))
	return visitor, nil
}

// GetVisitor returns one visitor by id.
func (s *Service) GetVisitor(ctx context.Context, visitorID id.VisitorID) (*Visitor, error) {
	visitor, err := s.store.FindVisitorByID(ctx, visitorID)
	if err != nil {
		return nil, wrapVisitorErr(err)
	}
	return visitor, nil
}

// ListVisitors returns all visitors ordered by national id.
func (s *Service) ListVisitors(ctx context.Context) ([]*Visitor, error) {
	visitors, err := s.store.ListVisitors(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorage, "failed to list visitors")
	}
	return visitors, nil
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

func wrapInmateErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "inmate not found")
	}
	return dErrors.Wrap(err, dErrors.CodeStorage, "inmate store failed")
}

func wrapVisitorErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "visitor not found")
	}
	return dErrors.Wrap(err, dErrors.CodeStorage, "visitor store failed")
}
