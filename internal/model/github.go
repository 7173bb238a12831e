package model

// PRFile is one changed file in a pull request, as returned by GitHub's
// PR-files endpoint. Transient — fetched per request, never persisted.
//
// Patch is the unified diff for the file. GitHub omits it for binary files
// (there is no textual diff), so the proxy substitutes a placeholder.
type PRFile struct {
	Filename  string `json:"filename"`
	Patch     string `json:"patch"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Status    string `json:"status"` // "added", "modified", "removed", ...
}

// PullRequestSummary is one open PR awaiting the current user's review,
// mapped from a GitHub search result. Transient, never persisted.
//
// The search API only carries the repo as an API URL
// (https://api.github.com/repos/{owner}/{name}), so the proxy parses
// RepoOwner and RepoName out of it.
type PullRequestSummary struct {
	Title     string `json:"title"`
	Number    int    `json:"number"`
	RepoOwner string `json:"repoOwner"`
	RepoName  string `json:"repoName"`
	URL       string `json:"url"`   // html_url — the human-facing PR page
	State     string `json:"state"` // always "open" given the search query, but kept for fidelity
	CreatedAt string `json:"created_at"`
}
