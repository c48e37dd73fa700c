package visit

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks Ledger

import (
	"context"
	"time"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

// Ledger is the append-only record of decided visits. Records are never
// updated or deleted; rejected records stay for audit. Implementations
// return sentinel-style errors for infrastructure failures and the
// scheduler translates them into coded domain errors.
//
// Both finders take the civil date of the visit (00:00 UTC) and return
// records ordered by decided-at ascending.
type Ledger interface {
	// Append assigns the record id and persists the record.
	Append(ctx context.Context, record *VisitRecord) (*VisitRecord, error)

	// FindByInmateAndDate returns every record for the inmate on the date.
	FindByInmateAndDate(ctx context.Context, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error)

	// FindByVisitorAndInmateAndDate returns the pair's records on the date.
	FindByVisitorAndInmateAndDate(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error)
}
