package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/JIATech/SIGVIP-sub002/internal/calendar"
	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
)

// PostgresStore persists roster records in PostgreSQL. Uniqueness of
// file numbers and national ids is enforced by unique indexes, so
// concurrent registrations race safely in the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) SaveEstablishment(ctx context.Context, establishment *Establishment) error {
	query := `
		INSERT INTO establishments (id, name, visiting_days, open_minutes, close_minutes, one_visit_per_day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			visiting_days = EXCLUDED.visiting_days,
			open_minutes = EXCLUDED.open_minutes,
			close_minutes = EXCLUDED.close_minutes,
			one_visit_per_day = EXCLUDED.one_visit_per_day
	`
	days := make([]int64, 0, len(establishment.Rules.Days))
	for day, allowed := range establishment.Rules.Days {
		if allowed {
			days = append(days, int64(day))
		}
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(establishment.ID),
		establishment.Name,
		pq.Array(days),
		int(establishment.Rules.Open),
		int(establishment.Rules.Close),
		establishment.OneVisitPerDay,
		establishment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save establishment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Establishment(ctx context.Context) (*Establishment, error) {
	query := `
		SELECT id, name, visiting_days, open_minutes, close_minutes, one_visit_per_day, created_at
		FROM establishments
		ORDER BY created_at
		LIMIT 1
	`
	var (
		rawID        uuid.UUID
		name         string
		days         []int64
		open, closeM int
		oneVisit     bool
		createdAt    time.Time
	)
	err := s.db.QueryRowContext(ctx, query).Scan(&rawID, &name, pq.Array(&days), &open, &closeM, &oneVisit, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find establishment: %w", err)
	}
	weekdays := make([]time.Weekday, 0, len(days))
	for _, day := range days {
		weekdays = append(weekdays, time.Weekday(day))
	}
	rules, err := calendar.NewVisitingRules(weekdays, calendar.TimeOfDay(open), calendar.TimeOfDay(closeM))
	if err != nil {
		return nil, fmt.Errorf("load establishment rules: %w", err)
	}
	return &Establishment{
		ID:             id.EstablishmentID(rawID),
		Name:           name,
		Rules:          rules,
		OneVisitPerDay: oneVisit,
		CreatedAt:      createdAt,
	}, nil
}

func (s *PostgresStore) CreateInmate(ctx context.Context, inmate *Inmate) error {
	query := `
		INSERT INTO inmates (id, file_number, cell_block, floor, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(inmate.ID),
		fileNumberKey(inmate.FileNumber),
		inmate.CellBlock,
		inmate.Floor,
		string(inmate.Status),
		inmate.CreatedAt,
		inmate.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create inmate: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateInmate(ctx context.Context, inmate *Inmate) error {
	query := `
		UPDATE inmates
		SET cell_block = $2, floor = $3, status = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(inmate.ID),
		inmate.CellBlock,
		inmate.Floor,
		string(inmate.Status),
		inmate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inmate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update inmate rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindInmateByID(ctx context.Context, inmateID id.InmateID) (*Inmate, error) {
	query := `
		SELECT id, file_number, cell_block, floor, status, created_at, updated_at
		FROM inmates
		WHERE id = $1
	`
	return s.scanInmate(s.db.QueryRowContext(ctx, query, uuid.UUID(inmateID)))
}

func (s *PostgresStore) FindInmateByFileNumber(ctx context.Context, fileNumber string) (*Inmate, error) {
	query := `
		SELECT id, file_number, cell_block, floor, status, created_at, updated_at
		FROM inmates
		WHERE file_number = $1
	`
	return s.scanInmate(s.db.QueryRowContext(ctx, query, fileNumberKey(fileNumber)))
}

func (s *PostgresStore) ListInmates(ctx context.Context) ([]*Inmate, error) {
	query := `
		SELECT id, file_number, cell_block, floor, status, created_at, updated_at
		FROM inmates
		ORDER BY file_number
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inmates: %w", err)
	}
	defer rows.Close()

	var out []*Inmate
	for rows.Next() {
		inmate, err := s.scanInmate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inmate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inmates rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateVisitor(ctx context.Context, visitor *Visitor) error {
	query := `
		INSERT INTO visitors (id, national_id, full_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(visitor.ID),
		nationalIDKey(visitor.NationalID),
		visitor.FullName,
		string(visitor.Status),
		visitor.CreatedAt,
		visitor.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create visitor: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateVisitor(ctx context.Context, visitor *Visitor) error {
	query := `
		UPDATE visitors
		SET full_name = $2, status = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(visitor.ID),
		visitor.FullName,
		string(visitor.Status),
		visitor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update visitor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update visitor rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindVisitorByID(ctx context.Context, visitorID id.VisitorID) (*Visitor, error) {
	query := `
		SELECT id, national_id, full_name, status, created_at, updated_at
		FROM visitors
		WHERE id = $1
	`
	return s.scanVisitor(s.db.QueryRowContext(ctx, query, uuid.UUID(visitorID)))
}

func (s *PostgresStore) FindVisitorByNationalID(ctx context.Context, nationalID string) (*Visitor, error) {
	query := `
		SELECT id, national_id, full_name, status, created_at, updated_at
		FROM visitors
		WHERE national_id = $1
	`
	return s.scanVisitor(s.db.QueryRowContext(ctx, query, nationalIDKey(nationalID)))
}

func (s *PostgresStore) ListVisitors(ctx context.Context) ([]*Visitor, error) {
	query := `
		SELECT id, national_id, full_name, status, created_at, updated_at
		FROM visitors
		ORDER BY national_id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	defer rows.Close()

	var out []*Visitor
	for rows.Next() {
		visitor, err := s.scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, visitor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list visitors rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanInmate(row rowScanner) (*Inmate, error) {
	var (
		rawID  uuid.UUID
		inmate Inmate
		status string
	)
	err := row.Scan(&rawID, &inmate.FileNumber, &inmate.CellBlock, &inmate.Floor, &status, &inmate.CreatedAt, &inmate.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan inmate: %w", err)
	}
	inmate.ID = id.InmateID(rawID)
	inmate.Status = PartyStatus(status)
	return &inmate, nil
}

func (s *PostgresStore) scanVisitor(row rowScanner) (*Visitor, error) {
	var (
		rawID   uuid.UUID
		visitor Visitor
		status  string
	)
	err := row.Scan(&rawID, &visitor.NationalID, &visitor.FullName, &status, &visitor.CreatedAt, &visitor.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan visitor: %w", err)
	}
	visitor.ID = id.VisitorID(rawID)
	visitor.Status = PartyStatus(status)
	return &visitor, nil
}

// unique_violation per the PostgreSQL error code table.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
