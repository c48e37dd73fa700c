package roster

import (
	"context"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

// EstablishmentStore persists the single establishment this engine serves.
type EstablishmentStore interface {
	SaveEstablishment(ctx context.Context, establishment *Establishment) error
	Establishment(ctx context.Context) (*Establishment, error)
}

// InmateStore persists inmate census records. Implementations return
// sentinel.ErrNotFound for missing records and sentinel.ErrConflict when
// a file number is already taken.
type InmateStore interface {
	CreateInmate(ctx context.Context, inmate *Inmate) error
	UpdateInmate(ctx context.Context, inmate *Inmate) error
	FindInmateByID(ctx context.Context, inmateID id.InmateID) (*Inmate, error)
	FindInmateByFileNumber(ctx context.Context, fileNumber string) (*Inmate, error)
	ListInmates(ctx context.Context) ([]*Inmate, error)
}

// VisitorStore persists visitor records. Implementations return
// sentinel.ErrNotFound for missing records and sentinel.ErrConflict when
// a national id is already registered.
type VisitorStore interface {
	CreateVisitor(ctx context.Context, visitor *Visitor) error
	UpdateVisitor(ctx context.Context, visitor *Visitor) error
	FindVisitorByID(ctx context.Context, visitorID id.VisitorID) (*Visitor, error)
	FindVisitorByNationalID(ctx context.Context, nationalID string) (*Visitor, error)
	ListVisitors(ctx context.Context) ([]*Visitor, error)
}

// Store bundles the three roster stores so twins can be swapped as a unit.
type Store interface {
	EstablishmentStore
	InmateStore
	VisitorStore
}
