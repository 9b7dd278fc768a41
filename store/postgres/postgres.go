// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/danielhkuo/quick-points/domain"
	"github.com/danielhkuo/quick-points/store"
	"github.com/danielhkuo/quick-points/token"
)

// SessionStore implements store.SessionStore against PostgreSQL.
type SessionStore struct {
	db *sql.DB
}

// EstimateStore implements store.EstimateStore against PostgreSQL.
type EstimateStore struct {
	db *sql.DB
}

// UserStore implements store.UserStore against PostgreSQL.
type UserStore struct {
	db *sql.DB
}

// NewSessionStore wraps an open PostgreSQL connection pool.
func NewSessionStore(db *sql.DB) *SessionStore { return &SessionStore{db: db} }

// NewEstimateStore wraps an open PostgreSQL connection pool.
func NewEstimateStore(db *sql.DB) *EstimateStore { return &EstimateStore{db: db} }

// NewUserStore wraps an open PostgreSQL connection pool.
func NewUserStore(db *sql.DB) *UserStore { return &UserStore{db: db} }

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

const sessionColumns = `id, name, share_token, owner_token, owner_id, project_id, is_revealed, status, final_estimate, created_at`

// FindByShareToken resolves the session a participant link points at.
func (s *SessionStore) FindByShareToken(ctx context.Context, shareToken string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session WHERE share_token = $1
	`, shareToken)
	return scanSession(row.Scan)
}

// FindByID resolves a session by primary key.
func (s *SessionStore) FindByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session WHERE id = $1
	`, id)
	return scanSession(row.Scan)
}

// FindByOwnerID lists sessions created by a known user, newest first.
func (s *SessionStore) FindByOwnerID(ctx context.Context, ownerID string) ([]domain.Session, error) {
	return s.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session
		WHERE owner_id = $1 ORDER BY created_at DESC, id
	`, ownerID)
}

// FindByProjectID lists sessions attached to a project, newest first.
func (s *SessionStore) FindByProjectID(ctx context.Context, projectID string) ([]domain.Session, error) {
	return s.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM estimation_session
		WHERE project_id = $1 ORDER BY created_at DESC, id
	`, projectID)
}

// Save inserts the session or updates its mutable fields. The update only
// applies while the stored row is still active: finalized is terminal, and a
// caller holding a stale copy read before a concurrent finalize must not be
// able to revert it. State changes past finalize go through Finalize only.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO estimation_session (id, name, share_token, owner_token, owner_id, project_id, is_revealed, status, final_estimate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_revealed = EXCLUDED.is_revealed,
			status = EXCLUDED.status,
			final_estimate = EXCLUDED.final_estimate
		WHERE estimation_session.status = 'active'
	`, sess.ID, sess.Name, sess.ShareToken.String(), sess.OwnerToken.String(),
		nullString(sess.OwnerID), nullString(sess.ProjectID),
		sess.IsRevealed, string(sess.Status), nullFloat(sess.FinalEstimate), sess.CreatedAt)
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
		SET status = 'finalized', is_revealed = TRUE, final_estimate = $2
		WHERE id = $1 AND status = 'active'
	`, id, value)
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM estimation_session WHERE id = $1`, id)
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
		WHERE session_id = $1 ORDER BY created_at, id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query estimates: %w", err)
	}
	defer rows.Close()

	estimates := []domain.Estimate{}
	for rows.Next() {
		var e domain.Estimate
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.Nickname, &e.Value, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan estimate: %w", err)
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}

// FindBySessionAndUser returns the single estimate for a (session, user) pair.
func (s *EstimateStore) FindBySessionAndUser(ctx context.Context, sessionID, userID string) (domain.Estimate, error) {
	var e domain.Estimate
	err := s.db.QueryRowContext(ctx, `
		SELECT `+estimateColumns+` FROM estimate
		WHERE session_id = $1 AND user_id = $2
	`, sessionID, userID).Scan(&e.ID, &e.SessionID, &e.UserID, &e.Nickname, &e.Value, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return domain.Estimate{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("failed to query estimate: %w", err)
	}
	return e, nil
}

// Save inserts the estimate or updates its mutable fields by id.
func (s *EstimateStore) Save(ctx context.Context, e domain.Estimate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO estimate (`+estimateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, e.ID, e.SessionID, e.UserID, e.Nickname, e.Value, e.CreatedAt, e.UpdatedAt)
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
	var saved domain.Estimate
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO estimate (`+estimateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, user_id) DO UPDATE SET
			nickname = EXCLUDED.nickname,
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
		RETURNING `+estimateColumns+`
	`, e.ID, e.SessionID, e.UserID, e.Nickname, e.Value, e.CreatedAt, e.UpdatedAt).
		Scan(&saved.ID, &saved.SessionID, &saved.UserID, &saved.Nickname, &saved.Value, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("failed to upsert estimate: %w", err)
	}
	return saved, nil
}

// Delete removes a single estimate.
func (s *EstimateStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM estimate WHERE id = $1`, id)
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
	_, err := s.db.ExecContext(ctx, `DELETE FROM estimate WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete estimates: %w", err)
	}
	return nil
}

// FindByID resolves a user by primary key.
func (s *UserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, nickname, created_at FROM app_user WHERE id = $1
	`, id).Scan(&u.ID, &u.Nickname, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.User{}, store.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// Save inserts a user or refreshes their nickname.
func (s *UserStore) Save(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_user (id, nickname, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET nickname = EXCLUDED.nickname
	`, u.ID, u.Nickname, u.CreatedAt)
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
		ownerID, projectID sql.NullString
		finalEstimate      sql.NullFloat64
	)
	err := scan(&sess.ID, &sess.Name, &shareRaw, &ownerRaw, &ownerID, &projectID,
		&sess.IsRevealed, &statusRaw, &finalEstimate, &sess.CreatedAt)
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

	sess.ShareToken = share
	sess.OwnerToken = owner
	sess.Status = domain.SessionStatus(statusRaw)
	sess.OwnerID = stringPtr(ownerID)
	sess.ProjectID = stringPtr(projectID)
	if finalEstimate.Valid {
		v := finalEstimate.Float64
		sess.FinalEstimate = &v
	}
	return sess, nil
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

// 23505 is unique_violation in the PostgreSQL error code table.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
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
