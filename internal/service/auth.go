package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/model"
	"github.com/mhasan/pr-reviewer/internal/repository"
)

// AuthService turns a completed GitHub OAuth exchange into a server-side
// session, and tears sessions down on logout.
//
// The browser only ever holds a signed session ID; the GitHub access token
// stays in the session row and is re-read on every authenticated request.
type AuthService struct {
	sessions repository.SessionRepository
	tokens   *auth.TokenService
	logger   *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(sessions repository.SessionRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// EstablishSession persists a session for the authenticated GitHub user and
// returns the signed cookie value plus its expiry.
func (s *AuthService) EstablishSession(ctx context.Context, ghUser *auth.GitHubUser) (string, time.Time, error) {
	now := time.Now()
	sess := &model.Session{
		ID: xid.New().String(),
		User: model.User{
			ID:          ghUser.UserID(),
			Username:    ghUser.Login,
			Avatar:      ghUser.AvatarURL,
			AccessToken: ghUser.AccessToken,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(auth.SessionDuration),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", time.Time{}, fmt.Errorf("creating session: %w", err)
	}

	cookie, err := s.tokens.Generate(sess.ID, sess.ExpiresAt)
	if err != nil {
		// The orphaned row is harmless; DeleteExpired sweeps it later.
		return "", time.Time{}, fmt.Errorf("signing session cookie: %w", err)
	}

	s.logger.Info("session established",
		slog.String("user", sess.User.Username),
		slog.String("sessionID", sess.ID),
	)

	return cookie, sess.ExpiresAt, nil
}

// EndSession deletes the server-side session record. Deleting a session
// that no longer exists is fine — logout must always succeed.
func (s *AuthService) EndSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	s.logger.Info("session ended", slog.String("sessionID", sessionID))
	return nil
}
