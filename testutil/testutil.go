// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quick-points/cliparse"
	"github.com/danielhkuo/quick-points/db"
	"github.com/danielhkuo/quick-points/domain"
	"github.com/danielhkuo/quick-points/store/sqlite"
	"github.com/danielhkuo/quick-points/token"
)

// SetupTestDB creates a fresh SQLite database in the test's temp directory
// with the full schema. A file-backed database (rather than :memory:) gives
// every connection in the pool the same data; capping the pool at one
// connection keeps concurrent test writers serialized the way SQLite expects.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quick_points_test.db")
	conn, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DriverSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3320,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		BaseURL:      "http://localhost:3320",
	}
}

// CreateTestUser inserts a user and returns its ID
func CreateTestUser(t *testing.T, conn *sql.DB, nickname string) string {
	t.Helper()

	id := uuid.NewString()
	user := domain.User{ID: id, Nickname: nickname, CreatedAt: time.Now()}
	if err := sqlite.NewUserStore(conn).Save(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// CreateTestSession inserts an active session and returns it along with its
// token strings. ownerID may be empty for an anonymous session.
func CreateTestSession(t *testing.T, conn *sql.DB, name, ownerID string) (session domain.Session, shareToken, ownerToken string) {
	t.Helper()

	share, err := token.GenerateShareToken()
	if err != nil {
		t.Fatalf("Failed to generate share token: %v", err)
	}
	owner, err := token.GenerateOwnerToken()
	if err != nil {
		t.Fatalf("Failed to generate owner token: %v", err)
	}

	var ownerRef *string
	if ownerID != "" {
		ownerRef = &ownerID
	}

	session = domain.NewSession(uuid.NewString(), name, share, owner, ownerRef, nil, time.Now())
	if err := sqlite.NewSessionStore(conn).Save(context.Background(), session); err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return session, share.String(), owner.String()
}

// SubmitTestEstimate inserts an estimate for a user in a session
func SubmitTestEstimate(t *testing.T, conn *sql.DB, sessionID, userID, nickname string, value float64) domain.Estimate {
	t.Helper()

	estimate, err := domain.NewEstimate(uuid.NewString(), sessionID, userID, nickname, value, time.Now())
	if err != nil {
		t.Fatalf("Failed to build test estimate: %v", err)
	}
	saved, err := sqlite.NewEstimateStore(conn).Upsert(context.Background(), estimate)
	if err != nil {
		t.Fatalf("Failed to save test estimate: %v", err)
	}
	return saved
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
