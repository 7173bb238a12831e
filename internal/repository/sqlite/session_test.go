package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/model"
)

func sampleSession(id string, expiresAt time.Time) *model.Session {
	return &model.Session{
		ID: id,
		User: model.User{
			ID:          "583231",
			Username:    "octocat",
			Avatar:      "https://avatars.githubusercontent.com/u/583231",
			AccessToken: "gho_secret",
		},
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

func TestSessionCreateThenGet_RoundTripsPrincipal(t *testing.T) {
	repo := newTestDB(t).Sessions()

	sess := sampleSession("sess-1", time.Now().Add(24*time.Hour))
	if err := repo.Create(context.Background(), sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.User.Username != "octocat" || got.User.ID != "583231" {
		t.Errorf("principal = %+v, want the stored identity", got.User)
	}
	// The access token must survive server-side — it's the credential for
	// every GitHub proxy call.
	if got.User.AccessToken != "gho_secret" {
		t.Errorf("AccessToken = %q, want the stored token", got.User.AccessToken)
	}
}

func TestSessionGet_Missing(t *testing.T) {
	repo := newTestDB(t).Sessions()

	_, err := repo.Get(context.Background(), "never-created")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() = %v, want ErrNotFound", err)
	}
}

func TestSessionDelete_IsIdempotent(t *testing.T) {
	repo := newTestDB(t).Sessions()

	sess := sampleSession("sess-1", time.Now().Add(time.Hour))
	_ = repo.Create(context.Background(), sess)

	if err := repo.Delete(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Second delete (double logout) must not error.
	if err := repo.Delete(context.Background(), "sess-1"); err != nil {
		t.Errorf("second Delete() = %v, want nil", err)
	}

	if _, err := repo.Get(context.Background(), "sess-1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	repo := newTestDB(t).Sessions()

	_ = repo.Create(context.Background(), sampleSession("stale", time.Now().Add(-time.Hour)))
	_ = repo.Create(context.Background(), sampleSession("fresh", time.Now().Add(time.Hour)))

	if err := repo.DeleteExpired(context.Background()); err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}

	if _, err := repo.Get(context.Background(), "stale"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expired session survived cleanup: err = %v", err)
	}
	if _, err := repo.Get(context.Background(), "fresh"); err != nil {
		t.Errorf("live session was removed by cleanup: err = %v", err)
	}
}

func TestSessionExpired(t *testing.T) {
	stale := sampleSession("s", time.Now().Add(-time.Minute))
	if !stale.Expired() {
		t.Error("session past its expiry must report Expired() = true")
	}

	fresh := sampleSession("s", time.Now().Add(time.Minute))
	if fresh.Expired() {
		t.Error("session before its expiry must report Expired() = false")
	}
}
