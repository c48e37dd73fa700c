package visit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

type inmateDateKey struct {
	inmateID id.InmateID
	date     time.Time
}

type pairDateKey struct {
	visitorID id.VisitorID
	inmateID  id.InmateID
	date      time.Time
}

// InMemoryLedger keeps visit records in two maps, one per finder. Dates
// are normalized to 00:00 UTC so time.Time works as a map key component.
// Suitable for development and tests; records vanish on restart.
type InMemoryLedger struct {
	mu           sync.RWMutex
	byInmateDate map[inmateDateKey][]*VisitRecord
	byPairDate   map[pairDateKey][]*VisitRecord
}

// NewInMemoryLedger constructs an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		byInmateDate: make(map[inmateDateKey][]*VisitRecord),
		byPairDate:   make(map[pairDateKey][]*VisitRecord),
	}
}

// Append assigns the record id and stores an independent copy under both
// lookup keys. The transient pass code never enters the ledger.
func (l *InMemoryLedger) Append(_ context.Context, record *VisitRecord) (*VisitRecord, error) {
	stored := record.Clone()
	stored.ID = id.VisitID(uuid.New())
	stored.Date = calendar.DateOf(stored.Date)
	stored.PassCode = ""

	l.mu.Lock()
	defer l.mu.Unlock()

	inmateKey := inmateDateKey{inmateID: stored.InmateID, date: stored.Date}
	pairKey := pairDateKey{visitorID: stored.VisitorID, inmateID: stored.InmateID, date: stored.Date}
	l.byInmateDate[inmateKey] = append(l.byInmateDate[inmateKey], stored)
	l.byPairDate[pairKey] = append(l.byPairDate[pairKey], stored)

	return stored.Clone(), nil
}

// FindByInmateAndDate returns the inmate's records for the date, decided-at
// ascending.
func (l *InMemoryLedger) FindByInmateAndDate(_ context.Context, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneSorted(l.byInmateDate[inmateDateKey{inmateID: inmateID, date: calendar.DateOf(date)}]), nil
}

// FindByVisitorAndInmateAndDate returns the pair's records for the date,
// decided-at ascending.
func (l *InMemoryLedger) FindByVisitorAndInmateAndDate(_ context.Context, visitorID id.VisitorID, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	key := pairDateKey{visitorID: visitorID, inmateID: inmateID, date: calendar.DateOf(date)}
	return cloneSorted(l.byPairDate[key]), nil
}

func cloneSorted(records []*VisitRecord) []*VisitRecord {
	result := make([]*VisitRecord, 0, len(records))
	for _, record := range records {
		result = append(result, record.Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DecidedAt.Before(result[j].DecidedAt)
	})
	return result
}
