package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements bootstraps the tables the PostgreSQL stores expect.
// Idempotent so the engine can run against a fresh or existing database.
//
// visits carries no foreign keys: the ledger also records rejections for
// parties the roster does not know.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS establishments (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		visiting_days BIGINT[] NOT NULL,
		open_minutes INT NOT NULL,
		close_minutes INT NOT NULL,
		one_visit_per_day BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inmates (
		id UUID PRIMARY KEY,
		file_number TEXT NOT NULL UNIQUE,
		cell_block TEXT NOT NULL,
		floor INT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id UUID PRIMARY KEY,
		national_id TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS authorizations (
		id UUID PRIMARY KEY,
		inmate_id UUID NOT NULL,
		visitor_id UUID NOT NULL,
		kinship TEXT NOT NULL,
		status TEXT NOT NULL,
		valid_from TIMESTAMPTZ NOT NULL,
		valid_until TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ
	)`,
	// Enforces the one-ACTIVE-authorization-per-pair invariant at the
	// storage layer; the store maps the violation to ErrConflict.
	`CREATE UNIQUE INDEX IF NOT EXISTS authorizations_active_pair
		ON authorizations (inmate_id, visitor_id) WHERE status = 'ACTIVE'`,
	`CREATE TABLE IF NOT EXISTS visits (
		id UUID PRIMARY KEY,
		inmate_id UUID NOT NULL,
		visitor_id UUID NOT NULL,
		visit_date DATE NOT NULL,
		slot_start INT NOT NULL,
		slot_end INT NOT NULL,
		decision TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		pass_code_hash TEXT NOT NULL DEFAULT '',
		decided_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS visits_inmate_date
		ON visits (inmate_id, visit_date)`,
	`CREATE INDEX IF NOT EXISTS visits_pair_date
		ON visits (visitor_id, inmate_id, visit_date)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
