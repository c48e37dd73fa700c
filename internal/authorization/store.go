package authorization

import (
	"context"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

// Store persists authorizations. Create returns sentinel.ErrConflict
// when the pair already has an ACTIVE authorization; lookups return
// sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, authorization *Authorization) error
	Update(ctx context.Context, authorization *Authorization) error
	FindByID(ctx context.Context, authorizationID id.AuthorizationID) (*Authorization, error)
	FindActiveByPair(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID) (*Authorization, error)
	ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*Authorization, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*Authorization, error)
}
