package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/model"
	"github.com/mhasan/pr-reviewer/internal/repository"
)

// SessionRepo implements repository.SessionRepository on top of DB.
type SessionRepo struct {
	db *DB
}

// Compile-time check that *SessionRepo implements repository.SessionRepository.
var _ repository.SessionRepository = (*SessionRepo)(nil)

// Create inserts a session record. The caller (the auth layer) generates the
// id and expiry — this method just persists what it is given.
func (r *SessionRepo) Create(ctx context.Context, sess *model.Session) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, username, avatar, access_token, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.User.ID,
		sess.User.Username,
		sess.User.Avatar,
		sess.User.AccessToken,
		sess.CreatedAt,
		sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}

	return nil
}

// Get loads a session by id. A missing row means the session was logged out,
// expired away, or never existed — all the same thing to the caller.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, username, avatar, access_token, created_at, expires_at
		 FROM sessions
		 WHERE id = ?`,
		id,
	).Scan(
		&sess.ID,
		&sess.User.ID,
		&sess.User.Username,
		&sess.User.Avatar,
		&sess.User.AccessToken,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}

	return &sess, nil
}

// Delete removes a session (logout). Deleting an already-gone session is not
// an error — logout must be idempotent.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting session %s: %w", id, err)
	}
	return nil
}

// DeleteExpired clears out sessions past their expiry. Called on startup as
// opportunistic housekeeping; correctness doesn't depend on it because Get
// callers check Expired() anyway.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting expired sessions: %w", err)
	}
	return nil
}
