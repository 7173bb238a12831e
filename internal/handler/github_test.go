package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/handler"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// MockPRFetcher implements handler.PRFetcher and records the token and
// arguments each call received.
type MockPRFetcher struct {
	CapturedToken    string
	CapturedRepo     string
	CapturedPRNumber int
	CapturedUsername string

	ReturnFiles []model.PRFile
	ReturnPRs   []model.PullRequestSummary
	ReturnErr   error
}

func (m *MockPRFetcher) PRFiles(_ context.Context, token, repo string, prNumber int) ([]model.PRFile, error) {
	m.CapturedToken = token
	m.CapturedRepo = repo
	m.CapturedPRNumber = prNumber
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnFiles, nil
}

func (m *MockPRFetcher) ReviewRequested(_ context.Context, token, username string) ([]model.PullRequestSummary, error) {
	m.CapturedToken = token
	m.CapturedUsername = username
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnPRs, nil
}

// asUserWithToken fakes an authenticated request whose session carries a
// GitHub access token.
func asUserWithToken(req *http.Request, username, token string) *http.Request {
	ctx := auth.WithPrincipal(req.Context(), &model.User{
		ID:          "1",
		Username:    username,
		AccessToken: token,
	})
	return req.WithContext(ctx)
}

func TestGitHubHandler_HandleFetchPR(t *testing.T) {
	logger := testLogger()

	t.Run("valid fetch", func(t *testing.T) {
		mock := &MockPRFetcher{ReturnFiles: []model.PRFile{
			{Filename: "main.go", Patch: "@@ -1 +1 @@", Additions: 1, Deletions: 1, Status: "modified"},
		}}
		h := handler.NewGitHubHandler(mock, logger)

		body := `{"repo":"octocat/hello-world","prNumber":42}`
		req := asUserWithToken(httptest.NewRequest(http.MethodPost, "/github/fetch-pr", bytes.NewBufferString(body)), "octocat", "gho_secret")
		rr := httptest.NewRecorder()

		h.HandleFetchPR(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		// The session's token was used — never anything from the body.
		assert.Equal(t, "gho_secret", mock.CapturedToken)
		assert.Equal(t, "octocat/hello-world", mock.CapturedRepo)
		assert.Equal(t, 42, mock.CapturedPRNumber)

		var res struct {
			Files []model.PRFile `json:"files"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Len(t, res.Files, 1)
		assert.Equal(t, "main.go", res.Files[0].Filename)
	})

	t.Run("invalid request body", func(t *testing.T) {
		h := handler.NewGitHubHandler(&MockPRFetcher{}, logger)

		req := asUserWithToken(httptest.NewRequest(http.MethodPost, "/github/fetch-pr", bytes.NewBufferString(`{"repo":`)), "octocat", "t")
		rr := httptest.NewRecorder()

		h.HandleFetchPR(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-positive PR number", func(t *testing.T) {
		mock := &MockPRFetcher{}
		h := handler.NewGitHubHandler(mock, logger)

		req := asUserWithToken(httptest.NewRequest(http.MethodPost, "/github/fetch-pr", bytes.NewBufferString(`{"repo":"a/b","prNumber":0}`)), "octocat", "t")
		rr := httptest.NewRecorder()

		h.HandleFetchPR(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, 0, mock.CapturedPRNumber, "client must not be called")
	})

	t.Run("PR not found", func(t *testing.T) {
		mock := &MockPRFetcher{ReturnErr: apperror.NotFoundMsg("PR not found: octocat/hello-world #999")}
		h := handler.NewGitHubHandler(mock, logger)

		req := asUserWithToken(httptest.NewRequest(http.MethodPost, "/github/fetch-pr", bytes.NewBufferString(`{"repo":"octocat/hello-world","prNumber":999}`)), "octocat", "t")
		rr := httptest.NewRecorder()

		h.HandleFetchPR(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "PR not found: octocat/hello-world #999", res.Message)
	})

	t.Run("expired GitHub token", func(t *testing.T) {
		mock := &MockPRFetcher{ReturnErr: apperror.Unauthorized("GitHub authentication failed")}
		h := handler.NewGitHubHandler(mock, logger)

		req := asUserWithToken(httptest.NewRequest(http.MethodPost, "/github/fetch-pr", bytes.NewBufferString(`{"repo":"a/b","prNumber":1}`)), "octocat", "stale")
		rr := httptest.NewRecorder()

		h.HandleFetchPR(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGitHubHandler_HandlePRsForReview(t *testing.T) {
	logger := testLogger()

	t.Run("lists review requests", func(t *testing.T) {
		mock := &MockPRFetcher{ReturnPRs: []model.PullRequestSummary{
			{Title: "Fix login bug", Number: 7, RepoOwner: "octocat", RepoName: "hello-world", State: "open"},
		}}
		h := handler.NewGitHubHandler(mock, logger)

		req := asUserWithToken(httptest.NewRequest(http.MethodGet, "/github/prs-for-review", nil), "octocat", "gho_secret")
		rr := httptest.NewRecorder()

		h.HandlePRsForReview(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "gho_secret", mock.CapturedToken)
		assert.Equal(t, "octocat", mock.CapturedUsername)

		var prs []model.PullRequestSummary
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&prs))
		assert.Len(t, prs, 1)
		assert.Equal(t, 7, prs[0].Number)
	})

	t.Run("search failure", func(t *testing.T) {
		mock := &MockPRFetcher{ReturnErr: apperror.Upstream("Failed to fetch PRs", "")}
		h := handler.NewGitHubHandler(mock, logger)

		req := asUserWithToken(httptest.NewRequest(http.MethodGet, "/github/prs-for-review", nil), "octocat", "t")
		rr := httptest.NewRecorder()

		h.HandlePRsForReview(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
