package repository

import (
	"context"

	"github.com/mhasan/pr-reviewer/internal/model"
)

// HistoryRepository persists past reviews. Records are append-only: there is
// deliberately no Update — a review is created once and only ever deleted.
//
// Every read/delete is scoped to a username so the storage layer itself
// enforces "no record crosses user boundaries", not just the service above it.
type HistoryRepository interface {
	Create(ctx context.Context, rec *model.HistoryRecord) error
	ListByUser(ctx context.Context, username string) ([]model.HistoryRecord, error)
	// Delete removes one record, but only if it belongs to username.
	// A missing or foreign-owned id both surface as "not found".
	Delete(ctx context.Context, username, id string) error
	DeleteAllByUser(ctx context.Context, username string) error
}

// SessionRepository persists server-side sessions. The browser cookie only
// carries the session id; the principal (including the GitHub access token)
// lives in these records.
type SessionRepository interface {
	Create(ctx context.Context, sess *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired clears sessions past their expiry. Run opportunistically;
	// an expired session is rejected on Get regardless.
	DeleteExpired(ctx context.Context) error
}
