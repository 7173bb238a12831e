package service

import (
	"context"
	"testing"
	"time"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// mockSessionRepo is an in-memory SessionRepository.
type mockSessionRepo struct {
	sessions map[string]*model.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *mockSessionRepo) Create(_ context.Context, sess *model.Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *mockSessionRepo) Get(_ context.Context, id string) (*model.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return sess, nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context) error {
	for id, sess := range m.sessions {
		if sess.Expired() {
			delete(m.sessions, id)
		}
	}
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *mockSessionRepo, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	repo := newMockSessionRepo()
	return NewAuthService(repo, tokens, testLogger()), repo, tokens
}

func TestEstablishSession(t *testing.T) {
	svc, repo, tokens := newTestAuthService(t)

	ghUser := &auth.GitHubUser{
		ID:          583231,
		Login:       "octocat",
		AvatarURL:   "https://avatars.githubusercontent.com/u/583231",
		AccessToken: "gho_secret",
	}

	cookie, expiresAt, err := svc.EstablishSession(context.Background(), ghUser)
	if err != nil {
		t.Fatalf("EstablishSession failed: %v", err)
	}

	// The cookie resolves back to a stored session carrying the token.
	sessionID, err := tokens.Validate(cookie)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	sess, ok := repo.sessions[sessionID]
	if !ok {
		t.Fatalf("no session stored under %q", sessionID)
	}
	if sess.User.Username != "octocat" {
		t.Errorf("expected username octocat, got %q", sess.User.Username)
	}
	if sess.User.AccessToken != "gho_secret" {
		t.Errorf("access token not carried into the session")
	}
	if sess.User.ID != "583231" {
		t.Errorf("expected user ID 583231, got %q", sess.User.ID)
	}

	wantExpiry := time.Now().Add(auth.SessionDuration)
	if expiresAt.Before(wantExpiry.Add(-time.Minute)) || expiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Errorf("expiry %v not near %v", expiresAt, wantExpiry)
	}
}

func TestEndSession(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.EstablishSession(ctx, &auth.GitHubUser{ID: 1, Login: "octocat"})
	if err != nil {
		t.Fatalf("EstablishSession failed: %v", err)
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(repo.sessions))
	}

	var sessionID string
	for id := range repo.sessions {
		sessionID = id
	}

	if err := svc.EndSession(ctx, sessionID); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Errorf("session not removed")
	}

	// Logging out twice, or with no session at all, still succeeds.
	if err := svc.EndSession(ctx, sessionID); err != nil {
		t.Errorf("repeated EndSession failed: %v", err)
	}
	if err := svc.EndSession(ctx, ""); err != nil {
		t.Errorf("EndSession with empty id failed: %v", err)
	}
}
