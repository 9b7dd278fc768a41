// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import (
	"time"

	"github.com/danielhkuo/quick-points/token"
)

// SessionStatus is the lifecycle state of an estimation session.
type SessionStatus string

// Session status constants. Active is the initial state; Finalized is
// terminal - no transition leaves it.
const (
	StatusActive    SessionStatus = "active"
	StatusFinalized SessionStatus = "finalized"
)

// Finalize values must lie in (0, MaxFinalEstimate].
const MaxFinalEstimate = 300.0

// Session is the estimation session aggregate. All mutators return a fresh
// copy; a Session value is never modified in place. State changes become
// visible to other callers only once the copy is persisted.
type Session struct {
	ID            string
	Name          string
	ShareToken    token.ShareToken
	OwnerToken    token.OwnerToken
	OwnerID       *string
	ProjectID     *string
	IsRevealed    bool
	Status        SessionStatus
	FinalEstimate *float64
	CreatedAt     time.Time
}

// NewSession constructs an active, unrevealed session with no committed value.
func NewSession(id, name string, share token.ShareToken, owner token.OwnerToken, ownerID, projectID *string, now time.Time) Session {
	return Session{
		ID:         id,
		Name:       name,
		ShareToken: share,
		OwnerToken: owner,
		OwnerID:    ownerID,
		ProjectID:  projectID,
		IsRevealed: false,
		Status:     StatusActive,
		CreatedAt:  now,
	}
}

// Reveal returns a copy with estimates visible to participants.
func (s Session) Reveal() Session {
	s.IsRevealed = true
	return s
}

// Hide returns a copy with estimates hidden again. Once the session is
// finalized the revealed flag is pinned true and Hide is a no-op.
func (s Session) Hide() Session {
	if s.Status == StatusFinalized {
		return s
	}
	s.IsRevealed = false
	return s
}

// Finalize commits value as the session's single authoritative estimate and
// moves the session to its terminal state. The copy it returns is revealed
// regardless of the prior visibility.
func (s Session) Finalize(value float64) (Session, error) {
	if s.Status == StatusFinalized {
		return Session{}, ErrSessionFinalized
	}
	if value <= 0 || value > MaxFinalEstimate {
		return Session{}, ErrInvalidEstimateValue
	}
	s.Status = StatusFinalized
	s.IsRevealed = true
	s.FinalEstimate = &value
	return s, nil
}

// IsFinalized reports whether the session reached its terminal state.
func (s Session) IsFinalized() bool {
	return s.Status == StatusFinalized
}

// CanBeControlledBy reports whether ownerToken is the session's owner token.
func (s Session) CanBeControlledBy(ownerToken string) bool {
	return s.OwnerToken.Matches(ownerToken)
}

// VerifyOwnership guards control operations, returning ErrUnauthorized on a
// token mismatch.
func (s Session) VerifyOwnership(ownerToken string) error {
	if !s.CanBeControlledBy(ownerToken) {
		return ErrUnauthorized
	}
	return nil
}
