package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schemaLockID = int64(2026101601)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	revoked_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);

CREATE TABLE IF NOT EXISTS donations (
	id TEXT PRIMARY KEY,
	donor_id TEXT NOT NULL,
	item_type TEXT NOT NULL,
	item_name TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit TEXT NOT NULL DEFAULT 'items',
	description TEXT NOT NULL DEFAULT '',
	pickup_location TEXT NOT NULL,
	expiry_date DATE,
	image_url TEXT,
	image_key TEXT,
	classification_result JSONB,
	freshness_score DOUBLE PRECISION,
	condition_score DOUBLE PRECISION,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_donations_donor_created ON donations(donor_id, created_at DESC);
ALTER TABLE donations ADD COLUMN IF NOT EXISTS image_key TEXT;
UPDATE donations
SET image_key = substring(image_url from '/donations/(.+)$')
WHERE image_key IS NULL AND image_url IS NOT NULL;

DROP INDEX IF EXISTS idx_donations_image_url;
CREATE INDEX IF NOT EXISTS idx_donations_image_key ON donations(image_key) WHERE image_key IS NOT NULL;

CREATE TABLE IF NOT EXISTS collection_points (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	address TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	contact_phone TEXT,
	contact_email TEXT,
	operating_hours TEXT,
	accepted_items JSONB NOT NULL DEFAULT '[]'::jsonb,
	description TEXT,
	is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_collection_points_active_name ON collection_points(is_active, name);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
