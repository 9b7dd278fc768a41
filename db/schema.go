// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Driver names accepted by CreateSchema.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, driver string) error {
	var schema string
	switch driver {
	case DriverPostgres:
		schema = schemaPostgres
	case DriverSQLite:
		schema = schemaSQLite
	default:
		return fmt.Errorf("unknown database driver %q", driver)
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schemaPostgres = `
-- Users (minimal identity records; real identity management is external)
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    nickname TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

-- Estimation sessions
CREATE TABLE IF NOT EXISTS estimation_session (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    share_token TEXT NOT NULL UNIQUE,
    owner_token TEXT NOT NULL UNIQUE,
    owner_id TEXT REFERENCES app_user(id) ON DELETE SET NULL,
    project_id TEXT,
    is_revealed BOOLEAN NOT NULL DEFAULT FALSE,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'finalized')),
    final_estimate DOUBLE PRECISION,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    CHECK ((status = 'finalized') = (final_estimate IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_session_share_token ON estimation_session(share_token);
CREATE INDEX IF NOT EXISTS idx_session_owner_id ON estimation_session(owner_id);
CREATE INDEX IF NOT EXISTS idx_session_project_id ON estimation_session(project_id);

-- Estimates (one per participant per session)
CREATE TABLE IF NOT EXISTS estimate (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES estimation_session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    nickname TEXT NOT NULL,
    value DOUBLE PRECISION NOT NULL CHECK (value >= 0),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (session_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_estimate_session_id ON estimate(session_id);
`

// SQLite stores timestamps as RFC 3339 text; the sqlite store handles the
// formatting. Foreign keys require PRAGMA foreign_keys = ON on the connection.
const schemaSQLite = `
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    nickname TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS estimation_session (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    share_token TEXT NOT NULL UNIQUE,
    owner_token TEXT NOT NULL UNIQUE,
    owner_id TEXT REFERENCES app_user(id) ON DELETE SET NULL,
    project_id TEXT,
    is_revealed INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'finalized')),
    final_estimate REAL,
    created_at TEXT NOT NULL,
    CHECK ((status = 'finalized') = (final_estimate IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_session_share_token ON estimation_session(share_token);
CREATE INDEX IF NOT EXISTS idx_session_owner_id ON estimation_session(owner_id);
CREATE INDEX IF NOT EXISTS idx_session_project_id ON estimation_session(project_id);

CREATE TABLE IF NOT EXISTS estimate (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES estimation_session(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    nickname TEXT NOT NULL,
    value REAL NOT NULL CHECK (value >= 0),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    UNIQUE (session_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_estimate_session_id ON estimate(session_id);
`
