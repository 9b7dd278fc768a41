// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the persistence contracts the coordination engine
consumes, plus the sentinel errors implementations map database failures to.

Two implementations ship with the server:

  - store/postgres: production backend using lib/pq
  - store/sqlite: single-file backend using modernc.org/sqlite (pure Go,
    also used by the test suite)

Both honor the same semantics:

  - ErrNotFound for lookups matching no row
  - ErrConflict for uniqueness violations (token collisions)
  - Upsert keyed on (session_id, user_id) with last-write-wins
  - Finalize as an atomic conditional update (affected-row count), the one
    place true mutual exclusion is required
  - deleting a session cascades to its estimates
*/
package store
