package visit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
)

// PostgresLedger persists visit records in the visits table. The table is
// insert-only; nothing here updates or deletes rows.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Append(ctx context.Context, record *VisitRecord) (*VisitRecord, error) {
	stored := record.Clone()
	stored.ID = id.VisitID(uuid.New())
	stored.Date = calendar.DateOf(stored.Date)
	stored.PassCode = ""

	query := `
		INSERT INTO visits (id, inmate_id, visitor_id, visit_date, slot_start, slot_end, decision, reason, detail, pass_code_hash, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := l.db.ExecContext(ctx, query,
		uuid.UUID(stored.ID),
		uuid.UUID(stored.InmateID),
		uuid.UUID(stored.VisitorID),
		stored.Date,
		int(stored.Slot.Start),
		int(stored.Slot.End),
		string(stored.Decision),
		string(stored.Reason),
		stored.Detail,
		stored.PassCodeHash,
		stored.DecidedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("append visit: %w", err)
	}
	return stored, nil
}

func (l *PostgresLedger) FindByInmateAndDate(ctx context.Context, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error) {
	query := selectVisit + ` WHERE inmate_id = $1 AND visit_date = $2 ORDER BY decided_at, id`
	return l.list(ctx, query, uuid.UUID(inmateID), calendar.DateOf(date))
}

func (l *PostgresLedger) FindByVisitorAndInmateAndDate(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, date time.Time) ([]*VisitRecord, error) {
	query := selectVisit + ` WHERE visitor_id = $1 AND inmate_id = $2 AND visit_date = $3 ORDER BY decided_at, id`
	return l.list(ctx, query, uuid.UUID(visitorID), uuid.UUID(inmateID), calendar.DateOf(date))
}

const selectVisit = `
	SELECT id, inmate_id, visitor_id, visit_date, slot_start, slot_end, decision, reason, detail, pass_code_hash, decided_at
	FROM visits
`

func (l *PostgresLedger) list(ctx context.Context, query string, args ...any) ([]*VisitRecord, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var out []*VisitRecord
	for rows.Next() {
		record, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visits rows: %w", err)
	}
	return out, nil
}

func scanVisit(row rowScanner) (*VisitRecord, error) {
	var (
		rawID, rawInmate, rawVisitor uuid.UUID
		record                       VisitRecord
		slotStart, slotEnd           int
		decision, reason             string
	)
	err := row.Scan(&rawID, &rawInmate, &rawVisitor, &record.Date, &slotStart, &slotEnd,
		&decision, &reason, &record.Detail, &record.PassCodeHash, &record.DecidedAt)
	if err != nil {
		return nil, fmt.Errorf("scan visit: %w", err)
	}
	record.ID = id.VisitID(rawID)
	record.InmateID = id.InmateID(rawInmate)
	record.VisitorID = id.VisitorID(rawVisitor)
	record.Date = calendar.DateOf(record.Date)
	record.Slot = calendar.Slot{Start: calendar.TimeOfDay(slotStart), End: calendar.TimeOfDay(slotEnd)}
	record.Decision = Decision(decision)
	record.Reason = RejectionReason(reason)
	return &record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
