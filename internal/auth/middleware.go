package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/mhasan/pr-reviewer/internal/model"
	"github.com/mhasan/pr-reviewer/internal/repository"
)

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type prevents collisions: only this package can
// create a key of type contextKey, so only this package can write principal
// values into the context.
type contextKey string

const (
	principalKey contextKey = "principal"
	sessionIDKey contextKey = "sessionID"
)

var errExpiredSession = errors.New("auth: session expired")

// RequireAuth enforces authentication on protected routes.
//
// It reads the session cookie, validates the JWT envelope, loads the
// server-side session, and stores the principal in the request context.
// Anything short of a live session — no cookie, bad signature, unknown or
// expired session — stops the chain with 401 before any handler (and thus
// any upstream call) runs.
//
// The principal travels in the request context, set here and read via
// PrincipalFromContext. No handler reaches for a global: the session state
// a handler sees is exactly what this middleware threaded through.
func RequireAuth(tokens *TokenService, sessions repository.SessionRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, sessionID, err := resolvePrincipal(r, tokens, sessions)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := WithSessionID(WithPrincipal(r.Context(), principal), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the principal if a valid session is present but does
// NOT block anonymous requests. Used on GET /user and /auth/logout, where
// "no session" is a normal answer the handler deals with itself rather than
// a gate slamming shut.
func OptionalAuth(tokens *TokenService, sessions repository.SessionRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal, sessionID, err := resolvePrincipal(r, tokens, sessions); err == nil {
				ctx := WithSessionID(WithPrincipal(r.Context(), principal), sessionID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns a context carrying the given user. The middleware
// uses it via RequireAuth; handler tests use it directly to fake an
// authenticated request.
func WithPrincipal(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// WithSessionID returns a context carrying the resolved session ID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// PrincipalFromContext retrieves the authenticated principal.
// Returns (nil, false) for anonymous requests.
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	principal, ok := ctx.Value(principalKey).(*model.User)
	return principal, ok && principal != nil
}

// SessionIDFromContext returns the current session's ID. The logout handler
// needs it to delete the server-side record.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// resolvePrincipal walks cookie → JWT → session record → principal.
func resolvePrincipal(r *http.Request, tokens *TokenService, sessions repository.SessionRepository) (*model.User, string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, "", err // http.ErrNoCookie — anonymous
	}

	sessionID, err := tokens.Validate(cookie.Value)
	if err != nil {
		return nil, "", err
	}

	sess, err := sessions.Get(r.Context(), sessionID)
	if err != nil {
		return nil, "", err
	}
	if sess.Expired() {
		return nil, "", errExpiredSession
	}

	return &sess.User, sessionID, nil
}
