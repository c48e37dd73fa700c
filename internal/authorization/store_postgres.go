package authorization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "github.com/JIATech/SIGVIP-sub002/pkg/domain"
	"github.com/JIATech/SIGVIP-sub002/pkg/platform/sentinel"
)

// PostgresStore persists authorizations in PostgreSQL. A partial unique
// index on (inmate_id, visitor_id) WHERE status = 'ACTIVE' enforces the
// one-ACTIVE-per-pair invariant, so concurrent grants race safely.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, authorization *Authorization) error {
	query := `
		INSERT INTO authorizations (id, inmate_id, visitor_id, kinship, status, valid_from, valid_until, created_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(authorization.ID),
		uuid.UUID(authorization.InmateID),
		uuid.UUID(authorization.VisitorID),
		authorization.Kinship,
		string(authorization.Status),
		authorization.ValidFrom,
		authorization.ValidUntil,
		authorization.CreatedAt,
		authorization.RevokedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create authorization: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, authorization *Authorization) error {
	query := `
		UPDATE authorizations
		SET kinship = $2, status = $3, valid_from = $4, valid_until = $5, revoked_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(authorization.ID),
		authorization.Kinship,
		string(authorization.Status),
		authorization.ValidFrom,
		authorization.ValidUntil,
		authorization.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("update authorization: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update authorization rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, authorizationID id.AuthorizationID) (*Authorization, error) {
	query := selectAuthorization + ` WHERE id = $1`
	return s.scan(s.db.QueryRowContext(ctx, query, uuid.UUID(authorizationID)))
}

func (s *PostgresStore) FindActiveByPair(ctx context.Context, inmateID id.InmateID, visitorID id.VisitorID) (*Authorization, error) {
	query := selectAuthorization + ` WHERE inmate_id = $1 AND visitor_id = $2 AND status = 'ACTIVE'`
	return s.scan(s.db.QueryRowContext(ctx, query, uuid.UUID(inmateID), uuid.UUID(visitorID)))
}

func (s *PostgresStore) ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*Authorization, error) {
	query := selectAuthorization + ` WHERE inmate_id = $1 ORDER BY created_at DESC, id`
	return s.list(ctx, query, uuid.UUID(inmateID))
}

func (s *PostgresStore) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*Authorization, error) {
	query := selectAuthorization + ` WHERE visitor_id = $1 ORDER BY created_at DESC, id`
	return s.list(ctx, query, uuid.UUID(visitorID))
}

const selectAuthorization = `
	SELECT id, inmate_id, visitor_id, kinship, status, valid_from, valid_until, created_at, revoked_at
	FROM authorizations
`

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Authorization, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list authorizations: %w", err)
	}
	defer rows.Close()

	var out []*Authorization
	for rows.Next() {
		authorization, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, authorization)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list authorizations rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scan(row rowScanner) (*Authorization, error) {
	var (
		rawID, rawInmate, rawVisitor uuid.UUID
		authorization                Authorization
		status                       string
		validUntil, revokedAt        sql.NullTime
	)
	err := row.Scan(&rawID, &rawInmate, &rawVisitor, &authorization.Kinship, &status,
		&authorization.ValidFrom, &validUntil, &authorization.CreatedAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan authorization: %w", err)
	}
	authorization.ID = id.AuthorizationID(rawID)
	authorization.InmateID = id.InmateID(rawInmate)
	authorization.VisitorID = id.VisitorID(rawVisitor)
	authorization.Status = Status(status)
	if validUntil.Valid {
		t := validUntil.Time
		authorization.ValidUntil = &t
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		authorization.RevokedAt = &t
	}
	return &authorization, nil
}

// unique_violation per the PostgreSQL error code table.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
