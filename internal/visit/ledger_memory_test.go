package visit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

type VisitLedgerSuite struct {
	suite.Suite
	ledger    *InMemoryLedger
	ctx       context.Context
	inmateID  id.InmateID
	visitorID id.VisitorID
	date      time.Time
}

func TestVisitLedgerSuite(t *testing.T) {
	suite.Run(t, new(VisitLedgerSuite))
}

func (s *VisitLedgerSuite) SetupTest() {
	s.ledger = NewInMemoryLedger()
	s.ctx = context.Background()
	s.inmateID = id.InmateID(uuid.New())
	s.visitorID = id.VisitorID(uuid.New())
	s.date = time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
}

func (s *VisitLedgerSuite) newRecord(visitorID id.VisitorID, decidedAt time.Time) *VisitRecord {
	return &VisitRecord{
		InmateID:  s.inmateID,
		VisitorID: visitorID,
		Date:      s.date,
		Slot:      calendar.Slot{Start: calendar.TimeOfDay(10 * 60), End: calendar.TimeOfDay(11 * 60)},
		Decision:  DecisionAdmitted,
		DecidedAt: decidedAt,
	}
}

func (s *VisitLedgerSuite) TestAppendAssignsIDAndStripsPassCode() {
	record := s.newRecord(s.visitorID, time.Now())
	record.PassCode = "plain-code"
	record.PassCodeHash = "$2a$10$hash"

	appended, err := s.ledger.Append(s.ctx, record)
	s.Require().NoError(err)
	s.False(appended.ID.IsNil())
	s.Empty(appended.PassCode)
	s.Equal("$2a$10$hash", appended.PassCodeHash)

	second, err := s.ledger.Append(s.ctx, s.newRecord(s.visitorID, time.Now()))
	s.Require().NoError(err)
	s.NotEqual(appended.ID, second.ID)
}

func (s *VisitLedgerSuite) TestAppendNormalizesDate() {
	record := s.newRecord(s.visitorID, time.Now())
	record.Date = s.date.Add(13 * time.Hour)

	_, err := s.ledger.Append(s.ctx, record)
	s.Require().NoError(err)

	found, err := s.ledger.FindByInmateAndDate(s.ctx, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(s.date, found[0].Date)
}

func (s *VisitLedgerSuite) TestFindOrdersByDecidedAt() {
	afternoon := s.date.Add(15 * time.Hour)
	morning := s.date.Add(9 * time.Hour)
	midday := s.date.Add(12 * time.Hour)

	for _, decidedAt := range []time.Time{afternoon, morning, midday} {
		_, err := s.ledger.Append(s.ctx, s.newRecord(s.visitorID, decidedAt))
		s.Require().NoError(err)
	}

	found, err := s.ledger.FindByInmateAndDate(s.ctx, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Require().Len(found, 3)
	s.Equal(morning, found[0].DecidedAt)
	s.Equal(midday, found[1].DecidedAt)
	s.Equal(afternoon, found[2].DecidedAt)
}

func (s *VisitLedgerSuite) TestFindScopesToInmateAndDate() {
	_, err := s.ledger.Append(s.ctx, s.newRecord(s.visitorID, time.Now()))
	s.Require().NoError(err)

	otherInmate := s.newRecord(s.visitorID, time.Now())
	otherInmate.InmateID = id.InmateID(uuid.New())
	_, err = s.ledger.Append(s.ctx, otherInmate)
	s.Require().NoError(err)

	otherDate := s.newRecord(s.visitorID, time.Now())
	otherDate.Date = s.date.AddDate(0, 0, 1)
	_, err = s.ledger.Append(s.ctx, otherDate)
	s.Require().NoError(err)

	found, err := s.ledger.FindByInmateAndDate(s.ctx, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Len(found, 1)
}

func (s *VisitLedgerSuite) TestFindByPairFiltersVisitors() {
	_, err := s.ledger.Append(s.ctx, s.newRecord(s.visitorID, time.Now()))
	s.Require().NoError(err)
	_, err = s.ledger.Append(s.ctx, s.newRecord(id.VisitorID(uuid.New()), time.Now()))
	s.Require().NoError(err)

	byInmate, err := s.ledger.FindByInmateAndDate(s.ctx, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Len(byInmate, 2)

	byPair, err := s.ledger.FindByVisitorAndInmateAndDate(s.ctx, s.visitorID, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Require().Len(byPair, 1)
	s.Equal(s.visitorID, byPair[0].VisitorID)
}

func (s *VisitLedgerSuite) TestReturnedRecordsAreIsolatedCopies() {
	original := s.newRecord(s.visitorID, time.Now())
	appended, err := s.ledger.Append(s.ctx, original)
	s.Require().NoError(err)

	// Mutating either the input or a returned copy must not reach the ledger.
	original.Detail = "changed after append"
	appended.Detail = "changed on the returned copy"

	found, err := s.ledger.FindByInmateAndDate(s.ctx, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Empty(found[0].Detail)
}

func (s *VisitLedgerSuite) TestUnknownKeysReturnEmpty() {
	found, err := s.ledger.FindByInmateAndDate(s.ctx, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Empty(found)

	byPair, err := s.ledger.FindByVisitorAndInmateAndDate(s.ctx, s.visitorID, s.inmateID, s.date)
	s.Require().NoError(err)
	s.Empty(byPair)
}
