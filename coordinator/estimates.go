// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/quick-points/domain"
	"github.com/danielhkuo/quick-points/store"
)

// SubmitEstimateParams carries one participant's submission.
type SubmitEstimateParams struct {
	ShareToken string
	UserID     string
	Nickname   string
	Value      float64
}

// SubmitEstimate upserts the participant's estimate for a session. This is
// the write-heavy path: many participants call it independently and
// simultaneously, and the same participant may resubmit to change their mind
// (last write wins per (session, user) pair).
func (c *Coordinator) SubmitEstimate(ctx context.Context, p SubmitEstimateParams) (domain.Estimate, error) {
	session, err := c.resolveSession(ctx, p.ShareToken)
	if err != nil {
		return domain.Estimate{}, err
	}

	if session.IsFinalized() {
		vErr := &domain.ValidationError{}
		vErr.Add("session", "session is finalized; no further estimates accepted")
		return domain.Estimate{}, vErr
	}

	nickname := strings.TrimSpace(p.Nickname)
	if len(nickname) < minNicknameLength || len(nickname) > maxNicknameLength {
		vErr := &domain.ValidationError{}
		vErr.Add("nickname", fmt.Sprintf("nickname must be %d-%d characters", minNicknameLength, maxNicknameLength))
		return domain.Estimate{}, vErr
	}

	if _, err := c.users.FindByID(ctx, p.UserID); err != nil {
		return domain.Estimate{}, mapStoreErr(err)
	}

	existing, err := c.estimates.FindBySessionAndUser(ctx, session.ID, p.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fresh, err := domain.NewEstimate(c.idGen(), session.ID, p.UserID, nickname, p.Value, c.now())
		if err != nil {
			return domain.Estimate{}, err
		}
		// Upsert rather than insert: a concurrent first submission from the
		// same user may have won the race since the read above.
		saved, err := c.estimates.Upsert(ctx, fresh)
		if err != nil {
			return domain.Estimate{}, fmt.Errorf("failed to save estimate: %w", err)
		}
		slog.Info("estimate submitted", "session_id", session.ID, "estimate_id", saved.ID, "is_update", false)
		return saved, nil

	case err != nil:
		return domain.Estimate{}, fmt.Errorf("failed to load estimate: %w", err)
	}

	if !existing.BelongsToSession(session.ID) || !existing.BelongsToUser(p.UserID) {
		return domain.Estimate{}, fmt.Errorf("estimate %s does not belong to session %s / user %s", existing.ID, session.ID, p.UserID)
	}

	updated, err := existing.Update(p.Value, c.now())
	if err != nil {
		return domain.Estimate{}, err
	}
	updated = updated.UpdateNickname(nickname, c.now())

	saved, err := c.estimates.Upsert(ctx, updated)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("failed to save estimate: %w", err)
	}

	slog.Info("estimate submitted", "session_id", session.ID, "estimate_id", saved.ID, "is_update", true)
	return saved, nil
}
