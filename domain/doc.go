// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package domain holds the estimation session entities and their invariants.

# Immutability

Every mutator on Session and Estimate takes a value receiver and returns a
fresh copy - nothing is modified in place:

	revealed := session.Reveal()
	// session.IsRevealed is still false

State changes only become visible to other callers once the returned copy is
persisted through a store.

# Session Lifecycle

	active ──finalize(value)──> finalized (terminal)

Finalize requires an active session and a value in (0, 300]; it pins
IsRevealed to true. Reveal and Hide may be toggled freely while the session
is active; Hide is a no-op once finalized. FinalEstimate is non-nil exactly
when the status is finalized.

# Estimates

One estimate per (session, user) pair, upserted on resubmission with
last-write-wins semantics. Values must be >= 0; a value of 0 means the
participant has not picked a number yet.

# Statistics

CalculateStatistics produces {average, median, min, max, count} over an
estimate list. It deliberately includes zero values; SubmittedOnly exists
for display paths that want only real submissions.

# Errors

Invariant violations surface immediately as sentinel errors (ErrNotFound,
ErrUnauthorized, ErrSessionFinalized, ErrInvalidEstimateValue) or as
*ValidationError for malformed input, and are never swallowed.
*/
package domain
