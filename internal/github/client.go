// Package github is a thin proxy client for the two GitHub REST endpoints
// the reviewer needs: the PR-files listing and the "PRs awaiting my review"
// search.
//
// AUTH MODEL:
// Unlike a typical API client, this one holds NO credential of its own.
// Every call is made on behalf of a signed-in user with THAT user's OAuth
// access token, so the token is a per-call parameter. This keeps the client
// stateless and makes the "principal is threaded explicitly" rule visible in
// the signatures — there is no ambient token to accidentally reuse across
// users.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/model"
)

const defaultAPIURL = "https://api.github.com"

// userAgent is required by the GitHub API — requests without one are rejected.
const userAgent = "AI-PR-Reviewer"

// Client provides access to the GitHub REST API on behalf of a user.
type Client struct {
	apiURL  string
	httpCli *http.Client
	logger  *slog.Logger
}

// NewClient creates a GitHub client. apiURL is overridable for tests; the
// empty string selects the public API.
func NewClient(apiURL string, logger *slog.Logger) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

// prFileEntry is the slice of GitHub's PR-files response we care about.
// Patch is a pointer so we can tell "absent" (binary file) from "empty".
type prFileEntry struct {
	Filename  string  `json:"filename"`
	Patch     *string `json:"patch"`
	Additions int     `json:"additions"`
	Deletions int     `json:"deletions"`
	Status    string  `json:"status"`
}

// PRFiles fetches the changed files of a pull request.
//
// repo must be "owner/name". Both halves are validated BEFORE any network
// call — a malformed repo string is the caller's mistake, not GitHub's, and
// must never count as an upstream failure.
func (c *Client) PRFiles(ctx context.Context, token, repo string, prNumber int) ([]model.PRFile, error) {
	owner, name, ok := splitRepo(repo)
	if !ok {
		return nil, apperror.ValidationFailed("repo", "Invalid repo format. Use: owner/repo")
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files", c.apiURL, owner, name, prNumber)

	status, body, err := c.get(ctx, token, endpoint)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch PR", err.Error())
	}

	switch {
	case status == http.StatusNotFound:
		return nil, apperror.NotFoundMsg(fmt.Sprintf("PR not found: %s #%d", repo, prNumber))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, apperror.Unauthorized("GitHub authentication failed")
	case status != http.StatusOK:
		return nil, apperror.Upstream("Failed to fetch PR", upstreamDetail(status, body))
	}

	var entries []prFileEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, apperror.Upstream("Failed to fetch PR", err.Error())
	}

	files := make([]model.PRFile, 0, len(entries))
	for _, e := range entries {
		// Binary files carry no textual diff — substitute a placeholder so
		// the client always has something to render.
		patch := "No changes"
		if e.Patch != nil && *e.Patch != "" {
			patch = *e.Patch
		}
		files = append(files, model.PRFile{
			Filename:  e.Filename,
			Patch:     patch,
			Additions: e.Additions,
			Deletions: e.Deletions,
			Status:    e.Status,
		})
	}

	c.logger.Debug("fetched PR files",
		slog.String("repo", repo),
		slog.Int("pr", prNumber),
		slog.Int("files", len(files)),
	)

	return files, nil
}

// searchResponse is the slice of GitHub's issue-search response we care about.
type searchResponse struct {
	Items []struct {
		Title         string `json:"title"`
		Number        int    `json:"number"`
		HTMLURL       string `json:"html_url"`
		State         string `json:"state"`
		CreatedAt     string `json:"created_at"`
		RepositoryURL string `json:"repository_url"`
	} `json:"items"`
}

// ReviewRequested searches for open PRs where username is a requested
// reviewer. Any upstream failure — including auth — maps to a generic fetch
// error: this listing is decorative on app load, and the client treats a
// failure as "no assigned PRs" rather than a fatal condition.
func (c *Client) ReviewRequested(ctx context.Context, token, username string) ([]model.PullRequestSummary, error) {
	query := fmt.Sprintf("is:pr review-requested:%s state:open", username)
	endpoint := fmt.Sprintf("%s/search/issues?q=%s", c.apiURL, url.QueryEscape(query))

	status, body, err := c.get(ctx, token, endpoint)
	if err != nil {
		return nil, apperror.Upstream("Failed to fetch PRs", err.Error())
	}
	if status != http.StatusOK {
		return nil, apperror.Upstream("Failed to fetch PRs", upstreamDetail(status, body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperror.Upstream("Failed to fetch PRs", err.Error())
	}

	prs := make([]model.PullRequestSummary, 0, len(result.Items))
	for _, item := range result.Items {
		owner, name := repoFromAPIURL(item.RepositoryURL)
		prs = append(prs, model.PullRequestSummary{
			Title:     item.Title,
			Number:    item.Number,
			RepoOwner: owner,
			RepoName:  name,
			URL:       item.HTMLURL,
			State:     item.State,
			CreatedAt: item.CreatedAt,
		})
	}

	c.logger.Debug("fetched review requests",
		slog.String("username", username),
		slog.Int("count", len(prs)),
	)

	return prs, nil
}

// get performs an authenticated GET and returns status + body. GitHub OAuth
// app tokens use the "token" authorization scheme (not "Bearer").
func (c *Client) get(ctx context.Context, token, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// splitRepo parses "owner/name", requiring both halves to be non-empty.
func splitRepo(repo string) (owner, name string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(repo), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// repoFromAPIURL extracts owner and name from a search result's repository
// API URL (".../repos/{owner}/{name}"). Unknown shapes map to empty strings
// rather than an error — one odd search result shouldn't sink the listing.
func repoFromAPIURL(apiURL string) (owner, name string) {
	const marker = "/repos/"
	idx := strings.Index(apiURL, marker)
	if idx < 0 {
		return "", ""
	}
	parts := strings.SplitN(apiURL[idx+len(marker):], "/", 2)
	if len(parts) != 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// upstreamDetail pulls the "message" field out of a GitHub error body when
// there is one, falling back to the raw body. Mirrors how the UI wants to
// show GitHub's own words ("Not Found", "Bad credentials", ...).
func upstreamDetail(status int, body []byte) string {
	var ghErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &ghErr); err == nil && ghErr.Message != "" {
		return ghErr.Message
	}
	return fmt.Sprintf("GitHub API error (status %d): %s", status, string(body))
}
