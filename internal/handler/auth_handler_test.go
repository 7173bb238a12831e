package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/handler"
	"github.com/mhasan/pr-reviewer/internal/model"
)

func TestAuthHandler_HandleMe(t *testing.T) {
	logger := testLogger()
	// HandleMe touches neither the OAuth provider nor the session service.
	h := handler.NewAuthHandler(nil, nil, "http://localhost:5173", logger)

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		req = req.WithContext(auth.WithPrincipal(req.Context(), &model.User{
			ID:          "583231",
			Username:    "octocat",
			Avatar:      "https://avatars.githubusercontent.com/u/583231",
			AccessToken: "gho_secret",
		}))
		rr := httptest.NewRecorder()

		h.HandleMe(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var res map[string]any
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "octocat", res["username"])

		// The access token must never be serialised.
		_, leaked := res["accessToken"]
		assert.False(t, leaked, "access token leaked into /user response")
		assert.NotContains(t, rr.Body.String(), "gho_secret")
	})

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user", nil)
		rr := httptest.NewRecorder()

		h.HandleMe(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var res map[string]string
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "Not authenticated", res["message"])
	})
}

func TestAuthHandler_HandleGitHubLogin(t *testing.T) {
	github := auth.NewGitHubProvider("client-id", "client-secret", "http://localhost:8080/auth/github/callback")
	h := handler.NewAuthHandler(github, nil, "http://localhost:5173", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/auth/github", nil)
	rr := httptest.NewRecorder()

	h.HandleGitHubLogin(rr, req)

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	// The redirect goes to GitHub with the same state the cookie holds.
	var stateCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	if assert.NotNil(t, stateCookie, "oauth_state cookie not set") {
		assert.True(t, stateCookie.HttpOnly)
		assert.Contains(t, rr.Header().Get("Location"), "state="+stateCookie.Value)
		assert.Contains(t, rr.Header().Get("Location"), "github.com/login/oauth/authorize")
	}
}

func TestAuthHandler_HandleGitHubCallback_BadState(t *testing.T) {
	github := auth.NewGitHubProvider("client-id", "client-secret", "http://localhost:8080/auth/github/callback")
	h := handler.NewAuthHandler(github, nil, "http://localhost:5173", testLogger())

	t.Run("missing state cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=xyz", nil)
		rr := httptest.NewRecorder()

		h.HandleGitHubCallback(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=abc&state=attacker", nil)
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
		rr := httptest.NewRecorder()

		h.HandleGitHubCallback(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
