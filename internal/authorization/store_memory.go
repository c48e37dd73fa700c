package authorization

import (
	"context"
	"sort"
	"sync"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
)

type pairKey struct {
	inmateID  id.InmateID
	visitorID id.VisitorID
}

// InMemoryStore keeps authorizations in process memory. The activePairs
// index enforces the one-ACTIVE-per-pair invariant under a single lock.
type InMemoryStore struct {
	mu          sync.RWMutex
	byID        map[id.AuthorizationID]*Authorization
	activePairs map[pairKey]id.AuthorizationID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:        make(map[id.AuthorizationID]*Authorization),
		activePairs: make(map[pairKey]id.AuthorizationID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, authorization *Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[authorization.ID]; exists {
		return sentinel.ErrConflict
	}
	key := pairKey{authorization.InmateID, authorization.VisitorID}
	if authorization.Status == StatusActive {
		if _, taken := s.activePairs[key]; taken {
			return sentinel.ErrConflict
		}
		s.activePairs[key] = authorization.ID
	}
	clone := *authorization
	s.byID[authorization.ID] = &clone
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, authorization *Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.byID[authorization.ID]
	if !exists {
		return sentinel.ErrNotFound
	}
	key := pairKey{current.InmateID, current.VisitorID}
	if current.Status == StatusActive && authorization.Status != StatusActive {
		delete(s.activePairs, key)
	}
	clone := *authorization
	s.byID[authorization.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, authorizationID id.AuthorizationID) (*Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authorization, ok := s.byID[authorizationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *authorization
	return &clone, nil
}

func (s *InMemoryStore) FindActiveByPair(_ context.Context, inmateID id.InmateID, visitorID id.VisitorID) (*Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authorizationID, ok := s.activePairs[pairKey{inmateID, visitorID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.byID[authorizationID]
	return &clone, nil
}

func (s *InMemoryStore) ListByInmate(_ context.Context, inmateID id.InmateID) ([]*Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Authorization
	for _, authorization := range s.byID {
		if authorization.InmateID == inmateID {
			clone := *authorization
			out = append(out, &clone)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (s *InMemoryStore) ListByVisitor(_ context.Context, visitorID id.VisitorID) ([]*Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Authorization
	for _, authorization := range s.byID {
		if authorization.VisitorID == visitorID {
			clone := *authorization
			out = append(out, &clone)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

// Newest first, id as tie-break so the order is stable.
func sortByCreatedAt(authorizations []*Authorization) {
	sort.Slice(authorizations, func(i, j int) bool {
		if !authorizations[i].CreatedAt.Equal(authorizations[j].CreatedAt) {
			return authorizations[i].CreatedAt.After(authorizations[j].CreatedAt)
		}
		return authorizations[i].ID.String() < authorizations[j].ID.String()
	})
}
