// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package coordinator implements the estimation session use cases.

Each operation follows the same shape: resolve the share token into a session
via the store, apply entity logic, persist the new state, project a plain
result value. Any transport (the HTTP handlers, a CLI, a test) can wrap these
operations with primitive inputs.

# Operations

  - CreateSession: fresh tokens, active session; owner reference must resolve
  - GetSession: session + estimates + statistics (the polling read path)
  - SubmitEstimate: upsert per (session, user), last write wins
  - ToggleReveal: flip or set estimate visibility, owner-token gated
  - FinalizeSession: commit one value, terminal; exactly-once under races
  - DeleteSession: remove the session and its estimates
  - ListOwnerSessions / ListProjectSessions: dashboard listings
  - RegisterUser: minimal identity records for participant validation

# Concurrency

One call is one unit of work against the store; nothing is cached across
calls and no locks are held. The finalize race (two owners racing past the
status read) is closed by the store's conditional update: the coordinator
treats "zero rows affected" as ErrSessionFinalized.

# Errors

Domain errors propagate verbatim for transport-layer mapping. The only
internal retry is token regeneration when a generated token collides with an
existing session's, bounded at five attempts.
*/
package coordinator
