package roster

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
)

// InMemoryStore keeps roster records in process memory. It is the default
// backend for development and the reference implementation the postgres
// twin is tested against.
type InMemoryStore struct {
	mu            sync.RWMutex
	establishment *Establishment
	inmates       map[id.InmateID]*Inmate
	byFileNumber  map[string]id.InmateID
	visitors      map[id.VisitorID]*Visitor
	byNationalID  map[string]id.VisitorID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		inmates:      make(map[id.InmateID]*Inmate),
		byFileNumber: make(map[string]id.InmateID),
		visitors:     make(map[id.VisitorID]*Visitor),
		byNationalID: make(map[string]id.VisitorID),
	}
}

func (s *InMemoryStore) SaveEstablishment(_ context.Context, establishment *Establishment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *establishment
	s.establishment = &clone
	return nil
}

func (s *InMemoryStore) Establishment(_ context.Context) (*Establishment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.establishment == nil {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.establishment
	return &clone, nil
}

func (s *InMemoryStore) CreateInmate(_ context.Context, inmate *Inmate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fileNumberKey(inmate.FileNumber)
	if _, taken := s.byFileNumber[key]; taken {
		return sentinel.ErrConflict
	}
	if _, exists := s.inmates[inmate.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *inmate
	s.inmates[inmate.ID] = &clone
	s.byFileNumber[key] = inmate.ID
	return nil
}

func (s *InMemoryStore) UpdateInmate(_ context.Context, inmate *Inmate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.inmates[inmate.ID]; !exists {
		return sentinel.ErrNotFound
	}
	clone := *inmate
	s.inmates[inmate.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindInmateByID(_ context.Context, inmateID id.InmateID) (*Inmate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inmate, ok := s.inmates[inmateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *inmate
	return &clone, nil
}

func (s *InMemoryStore) FindInmateByFileNumber(_ context.Context, fileNumber string) (*Inmate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inmateID, ok := s.byFileNumber[fileNumberKey(fileNumber)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.inmates[inmateID]
	return &clone, nil
}

func (s *InMemoryStore) ListInmates(_ context.Context) ([]*Inmate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Inmate, 0, len(s.inmates))
	for _, inmate := range s.inmates {
		clone := *inmate
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileNumber < out[j].FileNumber })
	return out, nil
}

func (s *InMemoryStore) CreateVisitor(_ context.Context, visitor *Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := nationalIDKey(visitor.NationalID)
	if _, taken := s.byNationalID[key]; taken {
		return sentinel.ErrConflict
	}
	if _, exists := s.visitors[visitor.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *visitor
	s.visitors[visitor.ID] = &clone
	s.byNationalID[key] = visitor.ID
	return nil
}

func (s *InMemoryStore) UpdateVisitor(_ context.Context, visitor *Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.visitors[visitor.ID]; !exists {
		return sentinel.ErrNotFound
	}
	clone := *visitor
	s.visitors[visitor.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindVisitorByID(_ context.Context, visitorID id.VisitorID) (*Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitor, ok := s.visitors[visitorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *visitor
	return &clone, nil
}

func (s *InMemoryStore) FindVisitorByNationalID(_ context.Context, nationalID string) (*Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitorID, ok := s.byNationalID[nationalIDKey(nationalID)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.visitors[visitorID]
	return &clone, nil
}

func (s *InMemoryStore) ListVisitors(_ context.Context) ([]*Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Visitor, 0, len(s.visitors))
	for _, visitor := range s.visitors {
		clone := *visitor
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NationalID < out[j].NationalID })
	return out, nil
}

// Uniqueness is case-insensitive so "a-100" and "A-100" cannot both register.
func fileNumberKey(fileNumber string) string {
	return strings.ToUpper(strings.TrimSpace(fileNumber))
}

func nationalIDKey(nationalID string) string {
	return strings.ToUpper(strings.TrimSpace(nationalID))
}
