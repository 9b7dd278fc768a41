// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/quick-points/domain"
	"github.com/danielhkuo/quick-points/store"
	"github.com/danielhkuo/quick-points/token"
)

// In-memory stores so coordinator logic is tested without a database. The
// mutex matters: FinalizeSession's compare-and-set contract is exercised
// concurrently below.

type fakeSessionStore struct {
	mu            sync.Mutex
	sessions      map[string]domain.Session
	conflictsLeft int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]domain.Session)}
}

func (f *fakeSessionStore) FindByShareToken(_ context.Context, shareToken string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ShareToken.String() == shareToken {
			return s, nil
		}
	}
	return domain.Session{}, store.ErrNotFound
}

func (f *fakeSessionStore) FindByID(_ context.Context, id string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return domain.Session{}, store.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) FindByOwnerID(_ context.Context, ownerID string) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Session{}
	for _, s := range f.sessions {
		if s.OwnerID != nil && *s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) FindByProjectID(_ context.Context, projectID string) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Session{}
	for _, s := range f.sessions {
		if s.ProjectID != nil && *s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Save(_ context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return store.ErrConflict
	}
	// Finalized rows are immutable, same as the SQL stores' guarded update
	if existing, ok := f.sessions[s.ID]; ok && existing.Status == domain.StatusFinalized {
		return nil
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionStore) Finalize(_ context.Context, id string, value float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != domain.StatusActive {
		return false, nil
	}
	final, err := s.Finalize(value)
	if err != nil {
		return false, err
	}
	f.sessions[id] = final
	return true, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

type fakeEstimateStore struct {
	mu        sync.Mutex
	estimates map[string]domain.Estimate // keyed session_id/user_id
}

func newFakeEstimateStore() *fakeEstimateStore {
	return &fakeEstimateStore{estimates: make(map[string]domain.Estimate)}
}

func estimateKey(sessionID, userID string) string { return sessionID + "/" + userID }

func (f *fakeEstimateStore) FindBySessionID(_ context.Context, sessionID string) ([]domain.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Estimate{}
	for _, e := range f.estimates {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEstimateStore) FindBySessionAndUser(_ context.Context, sessionID, userID string) (domain.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.estimates[estimateKey(sessionID, userID)]
	if !ok {
		return domain.Estimate{}, store.ErrNotFound
	}
	return e, nil
}

func (f *fakeEstimateStore) Save(_ context.Context, e domain.Estimate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.estimates[estimateKey(e.SessionID, e.UserID)] = e
	return nil
}

func (f *fakeEstimateStore) Upsert(_ context.Context, e domain.Estimate) (domain.Estimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := estimateKey(e.SessionID, e.UserID)
	if existing, ok := f.estimates[key]; ok {
		// Keep the winner of the original insert race
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	}
	f.estimates[key] = e
	return e, nil
}

func (f *fakeEstimateStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, e := range f.estimates {
		if e.ID == id {
			delete(f.estimates, k)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeEstimateStore) DeleteBySessionID(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, e := range f.estimates {
		if e.SessionID == sessionID {
			delete(f.estimates, k)
		}
	}
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]domain.User)}
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Save(_ context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

type fixture struct {
	coord     *Coordinator
	sessions  *fakeSessionStore
	estimates *fakeEstimateStore
	users     *fakeUserStore
}

func newFixture() *fixture {
	sessions := newFakeSessionStore()
	estimates := newFakeEstimateStore()
	users := newFakeUserStore()

	seq := 0
	idGen := func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}

	return &fixture{
		coord:     New(sessions, estimates, users, idGen, now),
		sessions:  sessions,
		estimates: estimates,
		users:     users,
	}
}

func (f *fixture) addUser(id, nickname string) {
	f.users.users[id] = domain.User{ID: id, Nickname: nickname, CreatedAt: time.Now()}
}

func (f *fixture) createSession(t *testing.T) CreateSessionResult {
	t.Helper()
	result, err := f.coord.CreateSession(context.Background(), CreateSessionParams{Name: "Sprint 42"})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return result
}

func TestCreateSession(t *testing.T) {
	f := newFixture()

	result := f.createSession(t)

	if len(result.ShareToken) != token.ShareTokenLength {
		t.Errorf("Expected %d-char share token, got %q", token.ShareTokenLength, result.ShareToken)
	}
	if len(result.OwnerToken) != token.OwnerTokenLength {
		t.Errorf("Expected %d-char owner token, got %q", token.OwnerTokenLength, result.OwnerToken)
	}

	saved, ok := f.sessions.sessions[result.ID]
	if !ok {
		t.Fatal("Session was not persisted")
	}
	if saved.Status != domain.StatusActive {
		t.Errorf("Expected active session, got %q", saved.Status)
	}
	if saved.IsRevealed {
		t.Error("New session should not be revealed")
	}
}

func TestCreateSessionNameTooLong(t *testing.T) {
	f := newFixture()

	_, err := f.coord.CreateSession(context.Background(), CreateSessionParams{
		Name: strings.Repeat("x", maxSessionNameLength+1),
	})

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["name"]; !ok {
		t.Errorf("Expected a name field error, got %v", vErr.FieldErrors)
	}
}

func TestCreateSessionUnknownOwner(t *testing.T) {
	f := newFixture()

	ownerID := "ghost"
	_, err := f.coord.CreateSession(context.Background(), CreateSessionParams{OwnerID: &ownerID})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for unknown owner, got %v", err)
	}
}

func TestCreateSessionRetriesOnTokenCollision(t *testing.T) {
	f := newFixture()
	f.sessions.conflictsLeft = 2

	result, err := f.coord.CreateSession(context.Background(), CreateSessionParams{Name: "Retry"})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if _, ok := f.sessions.sessions[result.ID]; !ok {
		t.Error("Session was not persisted after retries")
	}
}

func TestCreateSessionGivesUpAfterExhaustedRetries(t *testing.T) {
	f := newFixture()
	f.sessions.conflictsLeft = maxTokenAttempts

	if _, err := f.coord.CreateSession(context.Background(), CreateSessionParams{Name: "Doomed"}); err == nil {
		t.Error("Expected error when every attempt collides")
	}
}

func TestGetSession(t *testing.T) {
	f := newFixture()
	f.addUser("user-a", "Alice")
	f.addUser("user-b", "Bob")
	result := f.createSession(t)

	for _, sub := range []struct {
		userID string
		value  float64
	}{{"user-a", 3}, {"user-b", 5}} {
		if _, err := f.coord.SubmitEstimate(context.Background(), SubmitEstimateParams{
			ShareToken: result.ShareToken,
			UserID:     sub.userID,
			Nickname:   "Voter",
			Value:      sub.value,
		}); err != nil {
			t.Fatalf("SubmitEstimate failed: %v", err)
		}
	}

	detail, err := f.coord.GetSession(context.Background(), result.ShareToken)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(detail.Estimates) != 2 {
		t.Fatalf("Expected 2 estimates, got %d", len(detail.Estimates))
	}
	if detail.Statistics.Average != 4 || detail.Statistics.Count != 2 {
		t.Errorf("Unexpected statistics: %+v", detail.Statistics)
	}
}

func TestGetSessionBadToken(t *testing.T) {
	f := newFixture()

	if _, err := f.coord.GetSession(context.Background(), "short"); !errors.Is(err, token.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}

	unknown, _ := token.GenerateShareToken()
	if _, err := f.coord.GetSession(context.Background(), unknown.String()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSubmitEstimateCreatesAndUpdates(t *testing.T) {
	f := newFixture()
	f.addUser("user-a", "Alice")
	result := f.createSession(t)

	first, err := f.coord.SubmitEstimate(context.Background(), SubmitEstimateParams{
		ShareToken: result.ShareToken, UserID: "user-a", Nickname: "Alice", Value: 3,
	})
	if err != nil {
		t.Fatalf("First submission failed: %v", err)
	}

	second, err := f.coord.SubmitEstimate(context.Background(), SubmitEstimateParams{
		ShareToken: result.ShareToken, UserID: "user-a", Nickname: "Alice", Value: 8,
	})
	if err != nil {
		t.Fatalf("Resubmission failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Resubmission should update in place, got new id %q vs %q", second.ID, first.ID)
	}
	if second.Value != 8 {
		t.Errorf("Expected value 8 after resubmission, got %v", second.Value)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Error("UpdatedAt should advance on resubmission")
	}

	if n := len(f.estimates.estimates); n != 1 {
		t.Errorf("Expected exactly one stored estimate, got %d", n)
	}
}

func TestSubmitEstimateValidation(t *testing.T) {
	f := newFixture()
	f.addUser("user-a", "Alice")
	result := f.createSession(t)

	tests := []struct {
		name   string
		params SubmitEstimateParams
		check  func(error) bool
	}{
		{
			"nickname too short",
			SubmitEstimateParams{ShareToken: result.ShareToken, UserID: "user-a", Nickname: "A", Value: 3},
			func(err error) bool { var v *domain.ValidationError; return errors.As(err, &v) },
		},
		{
			"nickname too long",
			SubmitEstimateParams{ShareToken: result.ShareToken, UserID: "user-a", Nickname: strings.Repeat("x", maxNicknameLength+1), Value: 3},
			func(err error) bool { var v *domain.ValidationError; return errors.As(err, &v) },
		},
		{
			"negative value",
			SubmitEstimateParams{ShareToken: result.ShareToken, UserID: "user-a", Nickname: "Alice", Value: -1},
			func(err error) bool { return errors.Is(err, domain.ErrInvalidEstimateValue) },
		},
		{
			"unknown user",
			SubmitEstimateParams{ShareToken: result.ShareToken, UserID: "ghost", Nickname: "Ghost", Value: 3},
			func(err error) bool { return errors.Is(err, domain.ErrNotFound) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.coord.SubmitEstimate(context.Background(), tt.params)
			if !tt.check(err) {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSubmitEstimateRejectedAfterFinalize(t *testing.T) {
	f := newFixture()
	f.addUser("user-a", "Alice")
	result := f.createSession(t)

	if _, err := f.coord.FinalizeSession(context.Background(), result.ShareToken, result.OwnerToken, 5); err != nil {
		t.Fatalf("FinalizeSession failed: %v", err)
	}

	_, err := f.coord.SubmitEstimate(context.Background(), SubmitEstimateParams{
		ShareToken: result.ShareToken, UserID: "user-a", Nickname: "Alice", Value: 3,
	})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError for finalized session, got %v", err)
	}
}

func TestToggleReveal(t *testing.T) {
	f := newFixture()
	result := f.createSession(t)
	ctx := context.Background()

	// nil toggles
	r, err := f.coord.ToggleReveal(ctx, result.ShareToken, result.OwnerToken, nil)
	if err != nil || !r.IsRevealed {
		t.Fatalf("Expected toggle to reveal, got %+v err %v", r, err)
	}
	r, err = f.coord.ToggleReveal(ctx, result.ShareToken, result.OwnerToken, nil)
	if err != nil || r.IsRevealed {
		t.Fatalf("Expected toggle to hide, got %+v err %v", r, err)
	}

	// explicit value is idempotent
	reveal := true
	for i := 0; i < 2; i++ {
		r, err = f.coord.ToggleReveal(ctx, result.ShareToken, result.OwnerToken, &reveal)
		if err != nil || !r.IsRevealed {
			t.Fatalf("Expected explicit reveal, got %+v err %v", r, err)
		}
	}
}

func TestToggleRevealWrongOwnerToken(t *testing.T) {
	f := newFixture()
	result := f.createSession(t)

	other, _ := token.GenerateOwnerToken()
	_, err := f.coord.ToggleReveal(context.Background(), result.ShareToken, other.String(), nil)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestFinalizeSession(t *testing.T) {
	f := newFixture()
	result := f.createSession(t)

	final, err := f.coord.FinalizeSession(context.Background(), result.ShareToken, result.OwnerToken, 8)
	if err != nil {
		t.Fatalf("FinalizeSession failed: %v", err)
	}
	if final.Status != domain.StatusFinalized || final.FinalEstimate != 8 {
		t.Errorf("Unexpected finalize result: %+v", final)
	}

	saved := f.sessions.sessions[result.ID]
	if !saved.IsRevealed {
		t.Error("Finalize should force reveal")
	}

	// Terminal: a second finalize conflicts
	if _, err := f.coord.FinalizeSession(context.Background(), result.ShareToken, result.OwnerToken, 13); !errors.Is(err, domain.ErrSessionFinalized) {
		t.Errorf("Expected ErrSessionFinalized, got %v", err)
	}
}

func TestFinalizeSessionInvalidValue(t *testing.T) {
	f := newFixture()
	result := f.createSession(t)

	for _, v := range []float64{0, -2, domain.MaxFinalEstimate + 0.5} {
		if _, err := f.coord.FinalizeSession(context.Background(), result.ShareToken, result.OwnerToken, v); !errors.Is(err, domain.ErrInvalidEstimateValue) {
			t.Errorf("Expected ErrInvalidEstimateValue for %v, got %v", v, err)
		}
	}

	// Session must remain active after rejected values
	if f.sessions.sessions[result.ID].Status != domain.StatusActive {
		t.Error("Rejected finalize must not change session state")
	}
}

func TestFinalizeSessionConcurrentExactlyOneWins(t *testing.T) {
	f := newFixture()
	result := f.createSession(t)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = f.coord.FinalizeSession(context.Background(), result.ShareToken, result.OwnerToken, float64(idx+1))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrSessionFinalized):
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("Expected exactly 1 winning finalize, got %d", wins)
	}
}

func TestStaleSaveNeverRevertsFinalized(t *testing.T) {
	f := newFixture()
	result := f.createSession(t)
	ctx := context.Background()

	// The copy a reveal toggle would hold while a finalize commits
	stale := f.sessions.sessions[result.ID]

	if _, err := f.coord.FinalizeSession(ctx, result.ShareToken, result.OwnerToken, 5); err != nil {
		t.Fatalf("FinalizeSession failed: %v", err)
	}

	if err := f.sessions.Save(ctx, stale.Hide()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	saved := f.sessions.sessions[result.ID]
	if saved.Status != domain.StatusFinalized {
		t.Errorf("Stale save reverted status to %q", saved.Status)
	}
	if saved.FinalEstimate == nil || *saved.FinalEstimate != 5 {
		t.Errorf("Stale save lost the committed value, got %v", saved.FinalEstimate)
	}
	if !saved.IsRevealed {
		t.Error("Stale save hid a finalized session")
	}

	// A reveal toggle after the finalize is harmless too
	r, err := f.coord.ToggleReveal(ctx, result.ShareToken, result.OwnerToken, nil)
	if err != nil {
		t.Fatalf("ToggleReveal failed: %v", err)
	}
	if !r.IsRevealed || f.sessions.sessions[result.ID].Status != domain.StatusFinalized {
		t.Errorf("Toggle disturbed a finalized session: %+v", f.sessions.sessions[result.ID])
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture()
	f.addUser("user-a", "Alice")
	result := f.createSession(t)

	if _, err := f.coord.SubmitEstimate(context.Background(), SubmitEstimateParams{
		ShareToken: result.ShareToken, UserID: "user-a", Nickname: "Alice", Value: 5,
	}); err != nil {
		t.Fatalf("SubmitEstimate failed: %v", err)
	}

	if err := f.coord.DeleteSession(context.Background(), result.ShareToken, result.OwnerToken); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if len(f.sessions.sessions) != 0 {
		t.Error("Session should be gone")
	}
	if len(f.estimates.estimates) != 0 {
		t.Error("Estimates should be gone with the session")
	}

	if _, err := f.coord.GetSession(context.Background(), result.ShareToken); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestRegisterUser(t *testing.T) {
	f := newFixture()

	user, err := f.coord.RegisterUser(context.Background(), "  Alice  ")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if user.Nickname != "Alice" {
		t.Errorf("Expected trimmed nickname, got %q", user.Nickname)
	}
	if user.ID == "" {
		t.Error("Expected a generated user ID")
	}

	var vErr *domain.ValidationError
	if _, err := f.coord.RegisterUser(context.Background(), "A"); !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError for short nickname, got %v", err)
	}
}

func TestListOwnerSessions(t *testing.T) {
	f := newFixture()
	f.addUser("user-a", "Alice")
	ownerID := "user-a"

	if _, err := f.coord.CreateSession(context.Background(), CreateSessionParams{Name: "Mine", OwnerID: &ownerID}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	f.createSession(t) // anonymous, should not appear

	sessions, err := f.coord.ListOwnerSessions(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("ListOwnerSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected 1 owned session, got %d", len(sessions))
	}

	if _, err := f.coord.ListOwnerSessions(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestListProjectSessions(t *testing.T) {
	f := newFixture()
	projectID := "proj-1"

	if _, err := f.coord.CreateSession(context.Background(), CreateSessionParams{Name: "Tagged", ProjectID: &projectID}); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	f.createSession(t)

	sessions, err := f.coord.ListProjectSessions(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("ListProjectSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected 1 project session, got %d", len(sessions))
	}
}
