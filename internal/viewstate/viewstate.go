// Package viewstate models the reviewer frontend as an explicit state
// machine: a Phase, the signed-in user, and the workspace the user is
// looking at. Transitions are plain methods that validate before they
// mutate, so every rule the UI enforces (draft length, no double submit,
// login required) lives here instead of being scattered across render code.
//
// The package is transport-agnostic — it never performs HTTP itself. The
// caller runs the network call and feeds the outcome back in
// (SubmitSucceeded / SubmitFailed, HistoryLoaded, ...).
package viewstate

import (
	"fmt"
	"strings"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// Phase is where the app is in its lifecycle.
type Phase int

const (
	// PhaseCheckingAuth is the initial state, before the session check
	// (GET /user) has answered.
	PhaseCheckingAuth Phase = iota
	// PhaseUnauthenticated shows the login screen.
	PhaseUnauthenticated
	// PhaseAuthenticated shows the reviewer workspace.
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseCheckingAuth:
		return "checking-auth"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MaxDraftLength caps what the editor accepts. The server enforces its own
// (larger) bound; this one exists so the user finds out before a round-trip.
const MaxDraftLength = 1000

// Workspace is everything on screen while authenticated.
type Workspace struct {
	Draft       string
	Suggestions []model.Suggestion

	History []model.HistoryRecord
	Search  string

	// PR picker state
	RepoInput     string
	PRNumberInput int
	Files         []model.PRFile
	PullRequests  []model.PullRequestSummary

	Submitting bool
	ErrorMsg   string
}

// State is the whole client state. Zero value is not usable — construct
// with New so the phase and cache are set.
type State struct {
	Phase Phase
	User  *model.User

	Workspace Workspace

	cache Cache
}

// New returns the boot state: auth unknown, workspace empty. A nil cache is
// allowed and disables draft/suggestion persistence.
func New(cache Cache) *State {
	if cache == nil {
		cache = nopCache{}
	}
	return &State{
		Phase: PhaseCheckingAuth,
		cache: cache,
	}
}

// SessionChecked consumes the answer to the startup session check. A nil
// user means no valid session → login screen. A real user opens the
// workspace, restoring the cached draft and suggestions so a page reload
// doesn't lose work in progress.
func (s *State) SessionChecked(user *model.User) {
	if user == nil {
		s.Phase = PhaseUnauthenticated
		s.User = nil
		s.Workspace = Workspace{}
		return
	}

	s.Phase = PhaseAuthenticated
	s.User = user

	if draft, ok := s.cache.GetDraft(); ok {
		s.Workspace.Draft = draft
	}
	if suggestions, ok := s.cache.GetSuggestions(); ok {
		s.Workspace.Suggestions = suggestions
	}
}

// LoggedOut drops back to the login screen. The cache is cleared too — a
// shared machine should not show the next user someone else's draft.
func (s *State) LoggedOut() {
	s.Phase = PhaseUnauthenticated
	s.User = nil
	s.Workspace = Workspace{}
	s.cache.Clear()
}

// requireWorkspace guards every workspace transition.
func (s *State) requireWorkspace() error {
	if s.Phase != PhaseAuthenticated {
		return apperror.Unauthorized("Not authenticated")
	}
	return nil
}

// EditDraft replaces the editor contents. Input beyond MaxDraftLength is
// rejected whole rather than truncated — silently cutting pasted code would
// produce a review of half a file.
func (s *State) EditDraft(code string) error {
	if err := s.requireWorkspace(); err != nil {
		return err
	}
	if len(code) > MaxDraftLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("Code exceeds the %d character limit", MaxDraftLength))
	}

	s.Workspace.Draft = code
	s.cache.SetDraft(code)
	return nil
}

// BeginSubmit validates the draft and marks the submission in flight. The
// caller only performs the network call if this returns nil; a second
// submit while one is pending is rejected.
func (s *State) BeginSubmit() error {
	if err := s.requireWorkspace(); err != nil {
		return err
	}
	if s.Workspace.Submitting {
		return apperror.ValidationFailed("submit", "A review is already in progress")
	}
	if strings.TrimSpace(s.Workspace.Draft) == "" {
		return apperror.ValidationFailed("code", "No code provided")
	}

	s.Workspace.Submitting = true
	s.Workspace.ErrorMsg = ""
	return nil
}

// SubmitSucceeded installs the returned suggestions, mirrors them to the
// cache, and prepends the saved record to the history panel so it shows up
// without a refetch.
func (s *State) SubmitSucceeded(rec model.HistoryRecord) {
	s.Workspace.Submitting = false
	s.Workspace.Suggestions = rec.Suggestions
	s.cache.SetSuggestions(rec.Suggestions)

	s.Workspace.History = append([]model.HistoryRecord{rec}, s.Workspace.History...)
}

// SubmitFailed surfaces the error and re-enables the submit button. The
// draft is untouched so the user can retry.
func (s *State) SubmitFailed(message string) {
	s.Workspace.Submitting = false
	s.Workspace.ErrorMsg = message
}

// HistoryLoaded replaces the history panel with the server's list. The
// server is authoritative: whatever was prepended optimistically is
// superseded wholesale.
func (s *State) HistoryLoaded(records []model.HistoryRecord) {
	s.Workspace.History = records
}

// ReopenEntry loads a past review back into the workspace, exactly as if
// the user had just run it.
func (s *State) ReopenEntry(rec model.HistoryRecord) error {
	if err := s.requireWorkspace(); err != nil {
		return err
	}

	s.Workspace.Draft = rec.Code
	s.Workspace.Suggestions = rec.Suggestions
	s.cache.SetDraft(rec.Code)
	s.cache.SetSuggestions(rec.Suggestions)
	return nil
}

// EntryDeleted removes one record from the panel after the server confirmed
// the delete.
func (s *State) EntryDeleted(id string) {
	kept := s.Workspace.History[:0]
	for _, rec := range s.Workspace.History {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	s.Workspace.History = kept
}

// HistoryCleared empties the panel after a confirmed clear-all.
func (s *State) HistoryCleared() {
	s.Workspace.History = nil
}

// SetSearch updates the history filter text.
func (s *State) SetSearch(query string) {
	s.Workspace.Search = query
}

// FilteredHistory returns the records matching the search box — a
// case-insensitive substring match on the code. An empty query matches
// everything.
func (s *State) FilteredHistory() []model.HistoryRecord {
	query := strings.ToLower(strings.TrimSpace(s.Workspace.Search))
	if query == "" {
		return s.Workspace.History
	}

	matched := make([]model.HistoryRecord, 0, len(s.Workspace.History))
	for _, rec := range s.Workspace.History {
		if strings.Contains(strings.ToLower(rec.Code), query) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// SetPRInputs updates the PR picker form.
func (s *State) SetPRInputs(repo string, prNumber int) {
	s.Workspace.RepoInput = repo
	s.Workspace.PRNumberInput = prNumber
}

// SelectPullRequest prefills the picker from a review-request row, so
// "review this one" is a single click instead of retyping owner/repo/#.
func (s *State) SelectPullRequest(pr model.PullRequestSummary) {
	s.Workspace.RepoInput = pr.RepoOwner + "/" + pr.RepoName
	s.Workspace.PRNumberInput = pr.Number
}

// PRFilesFetched installs the fetched diff files.
func (s *State) PRFilesFetched(files []model.PRFile) {
	s.Workspace.Files = files
	s.Workspace.ErrorMsg = ""
}

// ClearFiles dismisses the file list.
func (s *State) ClearFiles() {
	s.Workspace.Files = nil
}

// PullRequestsLoaded installs the review-requested list.
func (s *State) PullRequestsLoaded(prs []model.PullRequestSummary) {
	s.Workspace.PullRequests = prs
}

// UseFileAsDraft copies one fetched file's patch into the editor, trimming
// to the draft limit if the patch is larger. Unlike EditDraft, truncation
// is fine here: the user asked for "review this diff" and a bounded prefix
// beats a rejection.
func (s *State) UseFileAsDraft(file model.PRFile) error {
	if err := s.requireWorkspace(); err != nil {
		return err
	}

	patch := file.Patch
	if len(patch) > MaxDraftLength {
		patch = patch[:MaxDraftLength]
	}

	s.Workspace.Draft = patch
	s.cache.SetDraft(patch)
	return nil
}
