package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// PRFetcher is the GitHub client surface these endpoints need.
type PRFetcher interface {
	PRFiles(ctx context.Context, token, repo string, prNumber int) ([]model.PRFile, error)
	ReviewRequested(ctx context.Context, token, username string) ([]model.PullRequestSummary, error)
}

// GitHubHandler proxies PR lookups through the server.
//
// WHY PROXY AT ALL?
// The user's GitHub access token lives in the server-side session and never
// reaches the browser. So any call that needs it — fetching PR diffs,
// listing review requests — has to go through here, with the token attached
// server-side.
type GitHubHandler struct {
	github PRFetcher
	logger *slog.Logger
}

// NewGitHubHandler creates a GitHubHandler.
func NewGitHubHandler(github PRFetcher, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{github: github, logger: logger}
}

// fetchPRRequest is the POST /github/fetch-pr body.
type fetchPRRequest struct {
	Repo     string `json:"repo"`     // "owner/repo"
	PRNumber int    `json:"prNumber"` // pull request number
}

// fetchPRResponse carries the changed files of one pull request.
type fetchPRResponse struct {
	Files []model.PRFile `json:"files"`
}

// HandleFetchPR returns the changed files of a pull request.
//
// HTTP: POST /github/fetch-pr
// Auth: Required — the session's access token is used for the GitHub call,
// so private repos the user can see work too.
// REQUEST BODY: {"repo": "owner/repo", "prNumber": 42}
func (h *GitHubHandler) HandleFetchPR(w http.ResponseWriter, r *http.Request) {
	var req fetchPRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid fetch-pr JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}
	if req.PRNumber <= 0 {
		writeError(w, apperror.ValidationFailed("prNumber", "PR number must be a positive integer"))
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Not authenticated"))
		return
	}

	files, err := h.github.PRFiles(r.Context(), principal.AccessToken, req.Repo, req.PRNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, fetchPRResponse{Files: files})
}

// HandlePRsForReview lists open PRs where the user's review is requested.
//
// HTTP: GET /github/prs-for-review
// RESPONSE: [{"title": "...", "number": 42, "repoOwner": "...", ...}]
func (h *GitHubHandler) HandlePRsForReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Not authenticated"))
		return
	}

	prs, err := h.github.ReviewRequested(r.Context(), principal.AccessToken, principal.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prs)
}
