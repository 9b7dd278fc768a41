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
	"github.com/danielhkuo/quick-points/token"
)

// CreateSessionParams carries the optional attributes of a new session.
type CreateSessionParams struct {
	Name      string
	OwnerID   *string
	ProjectID *string
}

// CreateSessionResult is the only place the owner token is ever returned.
type CreateSessionResult struct {
	ID         string
	ShareToken string
	OwnerToken string
	Name       string
}

// SessionDetail is the polling read path: the session joined with its
// estimates and the statistics over them. Statistics covers every estimate
// including zero-valued placeholders; SubmittedStatistics covers only values
// a participant actually picked.
type SessionDetail struct {
	Session             domain.Session
	Estimates           []domain.Estimate
	Statistics          domain.Statistics
	SubmittedStatistics domain.Statistics
}

// RevealResult reports the visibility state after a toggle.
type RevealResult struct {
	ID         string
	ShareToken string
	IsRevealed bool
}

// FinalizeResult reports the committed value of a finalized session.
type FinalizeResult struct {
	ID            string
	ShareToken    string
	Status        domain.SessionStatus
	FinalEstimate float64
}

// CreateSession generates fresh tokens, constructs an active session, and
// persists it. When OwnerID is set it must resolve to a known user, otherwise
// ErrUnauthorized. Token collisions trigger a bounded regenerate-and-retry.
func (c *Coordinator) CreateSession(ctx context.Context, p CreateSessionParams) (CreateSessionResult, error) {
	name := strings.TrimSpace(p.Name)
	if len(name) > maxSessionNameLength {
		vErr := &domain.ValidationError{}
		vErr.Add("name", fmt.Sprintf("name must be at most %d characters", maxSessionNameLength))
		return CreateSessionResult{}, vErr
	}

	if p.OwnerID != nil {
		if _, err := c.users.FindByID(ctx, *p.OwnerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return CreateSessionResult{}, domain.ErrUnauthorized
			}
			return CreateSessionResult{}, fmt.Errorf("failed to resolve owner: %w", err)
		}
	}

	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		share, err := token.GenerateShareToken()
		if err != nil {
			return CreateSessionResult{}, err
		}
		owner, err := token.GenerateOwnerToken()
		if err != nil {
			return CreateSessionResult{}, err
		}

		session := domain.NewSession(c.idGen(), name, share, owner, p.OwnerID, p.ProjectID, c.now())

		err = c.sessions.Save(ctx, session)
		if errors.Is(err, store.ErrConflict) {
			// Astronomically unlikely with 96+ bits of entropy, but the
			// unique constraint makes it observable, so handle it.
			slog.Warn("session token collision, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			return CreateSessionResult{}, fmt.Errorf("failed to save session: %w", err)
		}

		slog.Info("session created", "session_id", session.ID, "has_owner", p.OwnerID != nil)

		return CreateSessionResult{
			ID:         session.ID,
			ShareToken: share.String(),
			OwnerToken: owner.String(),
			Name:       name,
		}, nil
	}

	return CreateSessionResult{}, fmt.Errorf("token generation exhausted after %d attempts", maxTokenAttempts)
}

// GetSession resolves a share token into the session plus all its estimates.
func (c *Coordinator) GetSession(ctx context.Context, shareToken string) (SessionDetail, error) {
	session, err := c.resolveSession(ctx, shareToken)
	if err != nil {
		return SessionDetail{}, err
	}

	estimates, err := c.estimates.FindBySessionID(ctx, session.ID)
	if err != nil {
		return SessionDetail{}, fmt.Errorf("failed to load estimates: %w", err)
	}

	return SessionDetail{
		Session:             session,
		Estimates:           estimates,
		Statistics:          domain.CalculateStatistics(estimates),
		SubmittedStatistics: domain.CalculateStatistics(domain.SubmittedOnly(estimates)),
	}, nil
}

// ToggleReveal flips (or explicitly sets, when reveal is non-nil) the
// visibility of a session's estimates. Owner-token gated.
func (c *Coordinator) ToggleReveal(ctx context.Context, shareToken, ownerToken string, reveal *bool) (RevealResult, error) {
	session, err := c.resolveOwnedSession(ctx, shareToken, ownerToken)
	if err != nil {
		return RevealResult{}, err
	}

	var updated domain.Session
	switch {
	case reveal == nil:
		if session.IsRevealed {
			updated = session.Hide()
		} else {
			updated = session.Reveal()
		}
	case *reveal:
		updated = session.Reveal()
	default:
		updated = session.Hide()
	}

	if err := c.sessions.Save(ctx, updated); err != nil {
		return RevealResult{}, fmt.Errorf("failed to save session: %w", err)
	}

	slog.Info("session visibility changed", "session_id", updated.ID, "is_revealed", updated.IsRevealed)

	return RevealResult{
		ID:         updated.ID,
		ShareToken: shareToken,
		IsRevealed: updated.IsRevealed,
	}, nil
}

// FinalizeSession commits value as the session's single authoritative
// estimate. The entity validates on the loaded copy; the store performs the
// conditional write. Zero rows affected means another caller finalized first,
// and is reported as ErrSessionFinalized - never assumed to be a success.
func (c *Coordinator) FinalizeSession(ctx context.Context, shareToken, ownerToken string, value float64) (FinalizeResult, error) {
	session, err := c.resolveOwnedSession(ctx, shareToken, ownerToken)
	if err != nil {
		return FinalizeResult{}, err
	}

	if _, err := session.Finalize(value); err != nil {
		return FinalizeResult{}, err
	}

	ok, err := c.sessions.Finalize(ctx, session.ID, value)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("failed to finalize session: %w", err)
	}
	if !ok {
		return FinalizeResult{}, domain.ErrSessionFinalized
	}

	slog.Info("session finalized", "session_id", session.ID, "final_estimate", value)

	return FinalizeResult{
		ID:            session.ID,
		ShareToken:    shareToken,
		Status:        domain.StatusFinalized,
		FinalEstimate: value,
	}, nil
}

// DeleteSession removes a session and its estimates. Owner-token gated.
func (c *Coordinator) DeleteSession(ctx context.Context, shareToken, ownerToken string) error {
	session, err := c.resolveOwnedSession(ctx, shareToken, ownerToken)
	if err != nil {
		return err
	}

	if err := c.estimates.DeleteBySessionID(ctx, session.ID); err != nil {
		return fmt.Errorf("failed to delete estimates: %w", err)
	}
	if err := c.sessions.Delete(ctx, session.ID); err != nil {
		return mapStoreErr(err)
	}

	slog.Info("session deleted", "session_id", session.ID)
	return nil
}

// ListOwnerSessions returns the sessions created by a known user.
func (c *Coordinator) ListOwnerSessions(ctx context.Context, ownerID string) ([]domain.Session, error) {
	if _, err := c.users.FindByID(ctx, ownerID); err != nil {
		return nil, mapStoreErr(err)
	}
	sessions, err := c.sessions.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// ListProjectSessions returns the sessions attached to a project reference.
func (c *Coordinator) ListProjectSessions(ctx context.Context, projectID string) ([]domain.Session, error) {
	sessions, err := c.sessions.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// resolveSession validates the share token and loads the session behind it.
func (c *Coordinator) resolveSession(ctx context.Context, shareToken string) (domain.Session, error) {
	share, err := token.ParseShareToken(shareToken)
	if err != nil {
		return domain.Session{}, err
	}
	session, err := c.sessions.FindByShareToken(ctx, share.String())
	if err != nil {
		return domain.Session{}, mapStoreErr(err)
	}
	return session, nil
}

// resolveOwnedSession is the guard at the start of every control operation:
// both tokens must be well-formed and the owner token must match.
func (c *Coordinator) resolveOwnedSession(ctx context.Context, shareToken, ownerToken string) (domain.Session, error) {
	owner, err := token.ParseOwnerToken(ownerToken)
	if err != nil {
		return domain.Session{}, err
	}
	session, err := c.resolveSession(ctx, shareToken)
	if err != nil {
		return domain.Session{}, err
	}
	if err := session.VerifyOwnership(owner.String()); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}
