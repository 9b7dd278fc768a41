// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quick-points/domain"
	"github.com/danielhkuo/quick-points/store"
)

const (
	// maxTokenAttempts bounds regenerate-and-retry when a freshly generated
	// token collides with an existing one.
	maxTokenAttempts = 5

	maxSessionNameLength = 100
	minNicknameLength    = 2
	maxNicknameLength    = 50
)

// Coordinator orchestrates the estimation session use cases: it resolves
// tokens into entities via the stores, invokes entity methods, and persists
// the results. It holds no mutable state of its own - every call reconstructs
// entities from storage.
type Coordinator struct {
	sessions  store.SessionStore
	estimates store.EstimateStore
	users     store.UserStore
	idGen     func() string
	now       func() time.Time
}

// New wires the coordinator's dependencies. idGen and now default to
// uuid.NewString and time.Now when nil; tests inject deterministic versions.
func New(sessions store.SessionStore, estimates store.EstimateStore, users store.UserStore, idGen func() string, now func() time.Time) *Coordinator {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &Coordinator{
		sessions:  sessions,
		estimates: estimates,
		users:     users,
		idGen:     idGen,
		now:       now,
	}
}

// mapStoreErr translates the storage not-found sentinel into the domain one;
// everything else passes through.
func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
