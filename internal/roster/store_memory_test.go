package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
)

type RosterStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestRosterStoreSuite(t *testing.T) {
	suite.Run(t, new(RosterStoreSuite))
}

func (s *RosterStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *RosterStoreSuite) newInmate(fileNumber string) *Inmate {
	inmate, err := NewInmate(id.InmateID(uuid.New()), fileNumber, "A", 1, time.Now())
	s.Require().NoError(err)
	return inmate
}

func (s *RosterStoreSuite) newVisitor(nationalID string) *Visitor {
	visitor, err := NewVisitor(id.VisitorID(uuid.New()), nationalID, "Test Visitor", time.Now())
	s.Require().NoError(err)
	return visitor
}

func (s *RosterStoreSuite) TestEstablishmentRoundTrip() {
	s.Run("not found before save", func() {
		_, err := s.store.Establishment(s.ctx)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("save then load", func() {
		rules, err := calendar.NewVisitingRules([]time.Weekday{time.Monday}, 7*60, 16*60)
		s.Require().NoError(err)
		establishment, err := NewEstablishment(id.EstablishmentID(uuid.New()), "Unidad 9", rules, true, time.Now())
		s.Require().NoError(err)

		s.Require().NoError(s.store.SaveEstablishment(s.ctx, establishment))

		loaded, err := s.store.Establishment(s.ctx)
		s.Require().NoError(err)
		s.Equal(establishment.ID, loaded.ID)
		s.Equal("Unidad 9", loaded.Name)
		s.True(loaded.OneVisitPerDay)
	})
}

func (s *RosterStoreSuite) TestCreateInmate() {
	s.Run("creates and finds by id and file number", func() {
		inmate := s.newInmate("LP-0001")
		s.Require().NoError(s.store.CreateInmate(s.ctx, inmate))

		byID, err := s.store.FindInmateByID(s.ctx, inmate.ID)
		s.Require().NoError(err)
		s.Equal(inmate.FileNumber, byID.FileNumber)

		byFile, err := s.store.FindInmateByFileNumber(s.ctx, "LP-0001")
		s.Require().NoError(err)
		s.Equal(inmate.ID, byFile.ID)
	})

	s.Run("duplicate file number conflicts", func() {
		s.Require().NoError(s.store.CreateInmate(s.ctx, s.newInmate("LP-0002")))
		err := s.store.CreateInmate(s.ctx, s.newInmate("LP-0002"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("file number uniqueness is case-insensitive", func() {
		s.Require().NoError(s.store.CreateInmate(s.ctx, s.newInmate("lp-0003")))
		err := s.store.CreateInmate(s.ctx, s.newInmate("LP-0003"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *RosterStoreSuite) TestUpdateInmate() {
	s.Run("persists status changes", func() {
		inmate := s.newInmate("LP-0010")
		s.Require().NoError(s.store.CreateInmate(s.ctx, inmate))

		inmate.Status = StatusInactive
		s.Require().NoError(s.store.UpdateInmate(s.ctx, inmate))

		loaded, err := s.store.FindInmateByID(s.ctx, inmate.ID)
		s.Require().NoError(err)
		s.Equal(StatusInactive, loaded.Status)
	})

	s.Run("unknown inmate is not found", func() {
		err := s.store.UpdateInmate(s.ctx, s.newInmate("LP-0011"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RosterStoreSuite) TestListInmatesOrderedByFileNumber() {
	s.Require().NoError(s.store.CreateInmate(s.ctx, s.newInmate("LP-0030")))
	s.Require().NoError(s.store.CreateInmate(s.ctx, s.newInmate("LP-0010")))
	s.Require().NoError(s.store.CreateInmate(s.ctx, s.newInmate("LP-0020")))

	inmates, err := s.store.ListInmates(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(inmates, 3)
	s.Equal("LP-0010", inmates[0].FileNumber)
	s.Equal("LP-0020", inmates[1].FileNumber)
	s.Equal("LP-0030", inmates[2].FileNumber)
}

func (s *RosterStoreSuite) TestCreateVisitor() {
	s.Run("creates and finds by id and national id", func() {
		visitor := s.newVisitor("30111222")
		s.Require().NoError(s.store.CreateVisitor(s.ctx, visitor))

		byID, err := s.store.FindVisitorByID(s.ctx, visitor.ID)
		s.Require().NoError(err)
		s.Equal(visitor.NationalID, byID.NationalID)

		byNationalID, err := s.store.FindVisitorByNationalID(s.ctx, "30111222")
		s.Require().NoError(err)
		s.Equal(visitor.ID, byNationalID.ID)
	})

	s.Run("duplicate national id conflicts", func() {
		s.Require().NoError(s.store.CreateVisitor(s.ctx, s.newVisitor("30999888")))
		err := s.store.CreateVisitor(s.ctx, s.newVisitor("30999888"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *RosterStoreSuite) TestUpdateVisitor() {
	s.Run("persists status changes", func() {
		visitor := s.newVisitor("27555444")
		s.Require().NoError(s.store.CreateVisitor(s.ctx, visitor))

		visitor.Status = StatusInactive
		s.Require().NoError(s.store.UpdateVisitor(s.ctx, visitor))

		loaded, err := s.store.FindVisitorByID(s.ctx, visitor.ID)
		s.Require().NoError(err)
		s.Equal(StatusInactive, loaded.Status)
	})

	s.Run("unknown visitor is not found", func() {
		err := s.store.UpdateVisitor(s.ctx, s.newVisitor("27000111"))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *RosterStoreSuite) TestStoredRecordsAreIsolatedCopies() {
	inmate := s.newInmate("LP-0050")
	s.Require().NoError(s.store.CreateInmate(s.ctx, inmate))

	// Mutating the original after create must not leak into the store.
	inmate.Status = StatusInactive

	loaded, err := s.store.FindInmateByID(s.ctx, inmate.ID)
	s.Require().NoError(err)
	s.Equal(StatusActive, loaded.Status)

	// Mutating a loaded copy must not leak either.
	loaded.CellBlock = "Z"
	again, err := s.store.FindInmateByID(s.ctx, inmate.ID)
	s.Require().NoError(err)
	s.Equal("A", again.CellBlock)
}
