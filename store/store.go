// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/quick-points/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a uniqueness constraint,
	// e.g. a generated token colliding with an existing one.
	ErrConflict = errors.New("store: unique constraint violation")
)

// SessionStore persists estimation sessions. It is the single source of
// truth: the engine reconstructs sessions from it on every call and never
// caches across operations.
type SessionStore interface {
	FindByShareToken(ctx context.Context, shareToken string) (domain.Session, error)
	FindByID(ctx context.Context, id string) (domain.Session, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]domain.Session, error)
	FindByProjectID(ctx context.Context, projectID string) ([]domain.Session, error)

	// Save inserts the session or updates its mutable fields if the id
	// exists. The update is a no-op once the stored row is finalized:
	// finalized is terminal, and a stale copy read before a concurrent
	// finalize must never revert it. Finalize is the only way to change
	// state past that point.
	Save(ctx context.Context, session domain.Session) error

	// Finalize atomically commits value iff the session is still active,
	// reporting whether the update took effect. Two racing finalize calls both
	// pass the read-side status check; this conditional write is what
	// guarantees only one of them wins. Callers must treat false as
	// "already finalized", never as success.
	Finalize(ctx context.Context, id string, value float64) (bool, error)

	Delete(ctx context.Context, id string) error
}

// EstimateStore persists per-participant estimates.
type EstimateStore interface {
	FindBySessionID(ctx context.Context, sessionID string) ([]domain.Estimate, error)
	FindBySessionAndUser(ctx context.Context, sessionID, userID string) (domain.Estimate, error)

	Save(ctx context.Context, estimate domain.Estimate) error

	// Upsert inserts the estimate, or - if a row for (SessionID, UserID)
	// already exists - updates its value, nickname, and UpdatedAt in place,
	// keeping the original id and CreatedAt. Returns the surviving row.
	Upsert(ctx context.Context, estimate domain.Estimate) (domain.Estimate, error)

	Delete(ctx context.Context, id string) error
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

// UserLookup resolves user ids. The engine only ever checks existence; it
// never manages identity.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// UserStore adds the registration write needed to make the service
// self-contained.
type UserStore interface {
	UserLookup
	Save(ctx context.Context, user domain.User) error
}
