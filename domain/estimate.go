// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import "time"

// Estimate is one participant's submitted value for one session. At most one
// estimate exists per (SessionID, UserID) pair; resubmissions update the
// existing row (last write wins). A Value of 0 conventionally means "not yet
// submitted".
type Estimate struct {
	ID        string
	SessionID string
	UserID    string
	Nickname  string
	Value     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEstimate constructs an estimate with CreatedAt == UpdatedAt. Negative
// values are rejected.
func NewEstimate(id, sessionID, userID, nickname string, value float64, now time.Time) (Estimate, error) {
	if value < 0 {
		return Estimate{}, ErrInvalidEstimateValue
	}
	return Estimate{
		ID:        id,
		SessionID: sessionID,
		UserID:    userID,
		Nickname:  nickname,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update returns a copy with the new value and a refreshed UpdatedAt.
func (e Estimate) Update(value float64, now time.Time) (Estimate, error) {
	if value < 0 {
		return Estimate{}, ErrInvalidEstimateValue
	}
	e.Value = value
	e.UpdatedAt = now
	return e, nil
}

// UpdateNickname returns a copy carrying the participant's current display
// name. Nicknames drift: the stored value is whatever the user last submitted
// with.
func (e Estimate) UpdateNickname(nickname string, now time.Time) Estimate {
	e.Nickname = nickname
	e.UpdatedAt = now
	return e
}

// BelongsToSession reports whether the estimate is attached to sessionID.
func (e Estimate) BelongsToSession(sessionID string) bool {
	return e.SessionID == sessionID
}

// BelongsToUser reports whether the estimate was submitted by userID.
func (e Estimate) BelongsToUser(userID string) bool {
	return e.UserID == userID
}
