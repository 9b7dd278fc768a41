// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables for the selected driver:

	if err := db.CreateSchema(conn, db.DriverPostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
Separate dialects exist for PostgreSQL and SQLite (timestamp and boolean
representations differ).

# Tables

  - app_user: minimal identity records backing owner/participant validation
  - estimation_session: session aggregate with tokens and lifecycle state
  - estimate: one row per (session, user), upserted on resubmission

# Relationships

	app_user 1──* estimation_session (owner_id, ON DELETE SET NULL)
	estimation_session 1──* estimate  (ON DELETE CASCADE)
	app_user 1──* estimate            (ON DELETE CASCADE)

Deleting a session cascades to its estimates at the database level; the
engine relies on this contract.

# Constraints

  - estimation_session.share_token and owner_token are unique; collisions on
    freshly generated tokens surface as conflicts and trigger regeneration
  - estimate UNIQUE (session_id, user_id) backs the upsert path
  - status CHECK pins the enum; final_estimate is non-null exactly when the
    status is 'finalized'
*/
package db
