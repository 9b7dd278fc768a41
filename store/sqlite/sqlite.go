// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/quick-points/domain"
	"github.com/danielhkuo/quick-points/store"
	"github.com/danielhkuo/quick-points/token"
)

// SessionStore implements store.SessionStore against SQLite
// (modernc.org/sqlite, no cgo).
type SessionStore struct {
	db *sql.DB
}

// EstimateStore implements store.EstimateStore against SQLite.
type EstimateStore struct {
	db *sql.DB
}

// UserStore implements store.UserStore against SQLite.
type UserStore struct {
	db *sql.DB
}

// NewSessionStore wraps an open SQLite connection.
func NewSessionStore(db *sql.DB) *SessionStore { return &SessionStore{db: db} }

// NewEstimateStore wraps an open SQLite connection.
func NewEstimateStore(db *sql.DB) *EstimateStore { return &EstimateStore{db: db} }

// NewUserStore wraps an open SQLite connection.
func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

// Open opens (or creates) a SQLite database file with foreign keys and WAL
// enabled.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}
	return db, nil
}

const sessionColumns = `id, name, share_token, owner_token, owner_id, project_id, is_revealed, status, final_estimate, created_at`

// FindByShareToken resolves the session a participant link points at.
func (s *SessionStore) FindByShareToken(ctx context.Context, shareToken string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session WHERE share_token = ?
	`, shareToken)
	return scanSession(row.Scan)
}

// FindByID resolves a session by primary key.
func (s *SessionStore) FindByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session WHERE id = ?
	`, id)
	return scanSession(row.Scan)
}

// FindByOwnerID lists sessions created by a known user, newest first.
func (s *SessionStore) FindByOwnerID(ctx context.Context, ownerID string) ([]domain.Session, error) {
	return s.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session
		WHERE owner_id = ? ORDER BY created_at DESC, id
	`, ownerID)
}

// FindByProjectID lists sessions attached to a project, newest first.
func (s *SessionStore) FindByProjectID(ctx context.Context, projectID string) ([]domain.Session, error) {
	return s.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session
		WHERE project_id = ? ORDER BY created_at DESC, id
	`, projectID)
}

// Save inserts the session or updates its mutable fields. The update only
// applies while the stored row is still active: finalized is terminal, and a
// caller holding a stale copy read before a concurrent finalize must not be
// able to revert it. State changes past finalize go through Finalize only.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO estimation_session (id, name, share_token, owner_token, owner_id, project_id, is_revealed, status, final_estimate, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			is_revealed = excluded.is_revealed,
			status = excluded.status,
			final_estimate = excluded.final_estimate
		WHERE estimation_session.status = 'active'
	`, sess.ID, sess.Name, sess.ShareToken.String(), sess.OwnerToken.String(),
		nullString(sess.OwnerID), nullString(sess.ProjectID),
		sess.IsRevealed, string(sess.Status), nullFloat(sess.FinalEstimate), formatTime(sess.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Finalize commits value iff the session is still active. The WHERE clause is
// the mutual exclusion: of two racing callers exactly one sees an affected row.
func (s *SessionStore) Finalize(ctx context.Context, id string, value float64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE estimation_session
		SET status = 'finalized', is_revealed = 1, final_estimate = ?
		WHERE id = ? AND status = 'active'
	`, value, id)
	if err != nil {
		return false, fmt.Errorf("failed to finalize session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a session; estimates go with it via ON DELETE CASCADE.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM estimation_session WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

const estimateColumns = `id, session_id, user_id, nickname, value, created_at, updated_at`

// FindBySessionID lists a session's estimates in stable submission order.
func (s *EstimateStore) FindBySessionID(ctx context.Context, sessionID string) ([]domain.Estimate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+estimateColumns+` FROM estimate
		WHERE session_id = ? ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query estimates: %w", err)
	}
	defer rows.Close()

	estimates := []domain.Estimate{}
	for rows.Next() {
		e, err := scanEstimate(rows.Scan)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

// FindBySessionAndUser returns the single estimate for a (session, user) pair.
func (s *EstimateStore) FindBySessionAndUser(ctx context.Context, sessionID, userID string) (domain.Estimate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+estimateColumns+` FROM estimate
		WHERE session_id = ? AND user_id = ?
	`, sessionID, userID)
	return scanEstimate(row.Scan)
}

// Save inserts the estimate or updates its mutable fields by id.
func (s *EstimateStore) Save(ctx context.Context, e domain.Estimate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO estimate (`+estimateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			nickname = excluded.nickname,
			value = excluded.value,
			updated_at = excluded.updated_at
	`, e.ID, e.SessionID, e.UserID, e.Nickname, e.Value, formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return fmt.Errorf("failed to save estimate: %w", err)
	}
	return nil
}

// Upsert writes the estimate keyed on (session_id, user_id). A concurrent
// first submission from the same user is safe: the row that loses the insert
// race becomes an update, and the later write wins.
func (s *EstimateStore) Upsert(ctx context.Context, e domain.Estimate) (domain.Estimate, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO estimate (`+estimateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, user_id) DO UPDATE SET
			nickname = excluded.nickname,
			value = excluded.value,
			updated_at = excluded.updated_at
		RETURNING `+estimateColumns+`
	`, e.ID, e.SessionID, e.UserID, e.Nickname, e.Value, formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	saved, err := scanEstimate(row.Scan)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("failed to upsert estimate: %w", err)
	}
	return saved, nil
}

// Delete removes a single estimate.
func (s *EstimateStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM estimate WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete estimate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBySessionID removes all estimates for a session.
func (s *EstimateStore) DeleteBySessionID(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM estimate WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete estimates: %w", err)
	}
	return nil
}

// FindByID resolves a user by primary key.
func (s *UserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	var (
		u          domain.User
		createdRaw string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, nickname, created_at FROM app_user WHERE id = ?
	`, id).Scan(&u.ID, &u.Nickname, &createdRaw)
	if err == sql.ErrNoRows {
		return domain.User{}, store.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	u.CreatedAt, err = parseTime(createdRaw)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Save inserts a user or refreshes their nickname.
func (s *UserStore) Save(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, nickname, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET nickname = excluded.nickname
	`, u.ID, u.Nickname, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var (
		sess               domain.Session
		shareRaw, ownerRaw string
		statusRaw          string
		createdRaw         string
		ownerID, projectID sql.NullString
		finalEstimate      sql.NullFloat64
	)
	err := scan(&sess.ID, &sess.Name, &shareRaw, &ownerRaw, &ownerID, &projectID,
		&sess.IsRevealed, &statusRaw, &finalEstimate, &createdRaw)
	if err == sql.ErrNoRows {
		return domain.Session{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to scan session: %w", err)
	}

	share, err := token.ParseShareToken(shareRaw)
	if err != nil {
		return domain.Session{}, fmt.Errorf("corrupt share token in storage: %w", err)
	}
	owner, err := token.ParseOwnerToken(ownerRaw)
	if err != nil {
		return domain.Session{}, fmt.Errorf("corrupt owner token in storage: %w", err)
	}
	createdAt, err := parseTime(createdRaw)
	if err != nil {
		return domain.Session{}, err
	}

	sess.ShareToken = share
	sess.OwnerToken = owner
	sess.Status = domain.SessionStatus(statusRaw)
	sess.CreatedAt = createdAt
	sess.OwnerID = stringPtr(ownerID)
	sess.ProjectID = stringPtr(projectID)
	if finalEstimate.Valid {
		v := finalEstimate.Float64
		sess.FinalEstimate = &v
	}
	return sess, nil
}

func scanEstimate(scan func(dest ...any) error) (domain.Estimate, error) {
	var (
		e                      domain.Estimate
		createdRaw, updatedRaw string
	)
	err := scan(&e.ID, &e.SessionID, &e.UserID, &e.Nickname, &e.Value, &createdRaw, &updatedRaw)
	if err == sql.ErrNoRows {
		return domain.Estimate{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("failed to scan estimate: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdRaw); err != nil {
		return domain.Estimate{}, err
	}
	if e.UpdatedAt, err = parseTime(updatedRaw); err != nil {
		return domain.Estimate{}, err
	}
	return e, nil
}

func (s *SessionStore) querySessions(ctx context.Context, query string, arg any) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// RFC 3339 with nanoseconds keeps updated_at comparisons strict; plain
// RFC 3339 would truncate to whole seconds.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp in storage: %w", err)
	}
	return t, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
