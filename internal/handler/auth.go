package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/service"
)

// AuthHandler manages the GitHub OAuth login flow and session management.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → receive the code, establish a session, set the cookie
//   - HandleLogout         → destroy the session and clear the cookie
//   - HandleMe             → return the currently logged-in user's profile
//
// The frontend runs on its own origin, so login and logout both end in a
// redirect back to clientOrigin rather than a JSON body.
type AuthHandler struct {
	github       *auth.GitHubProvider
	sessions     *service.AuthService
	clientOrigin string
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	github *auth.GitHubProvider,
	sessions *service.AuthService,
	clientOrigin string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:       github,
		sessions:     sessions,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github
//
// CSRF PROTECTION VIA STATE:
// A random state string goes both to GitHub and into a short-lived cookie.
// HandleGitHubCallback verifies the two match, which proves the callback
// belongs to a flow this server started.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — long enough to approve, short enough to limit risk
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile + access token
//  3. Create a server-side session holding the token
//  4. Set the signed session cookie
//  5. Redirect to the frontend
//
// The GitHub access token never appears in the redirect or the cookie — it
// lives only in the session row.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch",
			slog.String("expected", stateCookie.Value),
			slog.String("got", r.URL.Query().Get("state")),
		)
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Clear the state cookie — it's single-use
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// GitHub reports "the user clicked Cancel" as an error parameter
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, h.clientOrigin+"/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	cookieValue, expiresAt, err := h.sessions.EstablishSession(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: session creation failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// HttpOnly = JavaScript cannot read this cookie (XSS protection).
	// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
	// Secure should be true in production (HTTPS only); false for local dev.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    cookieValue,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.clientOrigin, http.StatusSeeOther)
}

// HandleLogout destroys the session and clears the cookie.
//
// HTTP: GET /auth/logout
//
// Unlike a stateless JWT setup, logout here actually revokes access: the
// session row is deleted, so the old cookie is worthless even if replayed.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := auth.SessionIDFromContext(r.Context()); ok {
		if err := h.sessions.EndSession(r.Context(), sessionID); err != nil {
			// Cookie clearing below still logs the browser out.
			h.logger.Error("logout: session delete failed", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.clientOrigin+"/login", http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /user
// Auth: Optional — the frontend calls this on load to decide between the
// login screen and the app, so an anonymous request is a normal case and
// gets a plain 401 rather than an error page.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
		return
	}

	// model.User hides AccessToken from JSON, so this is safe to return.
	writeJSON(w, http.StatusOK, principal)
}
