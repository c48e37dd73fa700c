package restriction

import (
	"sort"
	"sync"
	"time"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
)

// Index holds all restrictions in memory, reachable from either target
// side. A pair-scoped restriction is indexed under both parties and
// deduplicated on lookup.
type Index struct {
	mu        sync.RWMutex
	seq       int64
	byID      map[int64]*Restriction
	byInmate  map[id.InmateID][]int64
	byVisitor map[id.VisitorID][]int64
}

func NewIndex() *Index {
	return &Index{
		byID:      make(map[int64]*Restriction),
		byInmate:  make(map[id.InmateID][]int64),
		byVisitor: make(map[id.VisitorID][]int64),
	}
}

// Add validates params and inserts a new ACTIVE restriction. A zero
// StartsAt defaults to now.
func (x *Index) Add(params Params, now time.Time) (*Restriction, error) {
	if params.StartsAt.IsZero() {
		params.StartsAt = now
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.seq++
	restriction := &Restriction{
		ID:        x.seq,
		InmateID:  params.InmateID,
		VisitorID: params.VisitorID,
		Reason:    params.Reason,
		StartsAt:  params.StartsAt,
		EndsAt:    params.EndsAt,
		Status:    StatusActive,
		CreatedAt: now,
	}
	x.byID[restriction.ID] = restriction
	if restriction.InmateID != nil {
		x.byInmate[*restriction.InmateID] = append(x.byInmate[*restriction.InmateID], restriction.ID)
	}
	if restriction.VisitorID != nil {
		x.byVisitor[*restriction.VisitorID] = append(x.byVisitor[*restriction.VisitorID], restriction.ID)
	}

	clone := *restriction
	return &clone, nil
}

// ActiveAt returns every restriction that blocks a visit between the
// pair at the given instant, newest first. Ties on creation time order
// by ascending id, so reports stay deterministic.
func (x *Index) ActiveAt(inmateID id.InmateID, visitorID id.VisitorID, at time.Time) []*Restriction {
	x.mu.RLock()
	defer x.mu.RUnlock()

	seen := make(map[int64]bool)
	var out []*Restriction
	collect := func(ids []int64) {
		for _, restrictionID := range ids {
			if seen[restrictionID] {
				continue
			}
			seen[restrictionID] = true
			restriction := x.byID[restrictionID]
			if restriction.InForceAt(at) && restriction.AppliesTo(inmateID, visitorID) {
				clone := *restriction
				out = append(out, &clone)
			}
		}
	}
	collect(x.byInmate[inmateID])
	collect(x.byVisitor[visitorID])

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Lift marks a restriction LIFTED. Lifting twice returns
// sentinel.ErrAlreadyLifted.
func (x *Index) Lift(restrictionID int64, now time.Time) (*Restriction, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	restriction, ok := x.byID[restrictionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if restriction.Status == StatusLifted {
		return nil, sentinel.ErrAlreadyLifted
	}
	restriction.Status = StatusLifted
	restriction.LiftedAt = &now

	clone := *restriction
	return &clone, nil
}

// Get returns one restriction by id.
func (x *Index) Get(restrictionID int64) (*Restriction, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	restriction, ok := x.byID[restrictionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *restriction
	return &clone, nil
}

// List returns restrictions filtered by optional targets, newest first.
func (x *Index) List(inmateID *id.InmateID, visitorID *id.VisitorID) []*Restriction {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []*Restriction
	for _, restriction := range x.byID {
		if inmateID != nil && (restriction.InmateID == nil || *restriction.InmateID != *inmateID) {
			continue
		}
		if visitorID != nil && (restriction.VisitorID == nil || *restriction.VisitorID != *visitorID) {
			continue
		}
		clone := *restriction
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
