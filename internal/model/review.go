package model

import "time"

// Suggestion is one structured review comment produced by the AI reviewer,
// optionally with an illustrative code snippet.
//
// WHY *string FOR Code?
// The LLM is prompted to return `"code": null` when there is no snippet, and
// the distinction between "no snippet" and "empty snippet" matters to the
// client. A *string round-trips JSON null faithfully; a plain string would
// silently collapse null to "".
type Suggestion struct {
	Comment string  `json:"comment"`
	Code    *string `json:"code"`
}

// HistoryRecord is a persisted past review: the submitted code plus the
// suggestions it produced, scoped to the user who submitted it.
//
// Records are append-only — they are created on a successful review
// submission and deleted (one by one, or in bulk), never mutated.
type HistoryRecord struct {
	ID          string       `json:"id"`
	User        string       `json:"user"` // owning username; list/delete are always scoped to it
	Code        string       `json:"code"`
	Suggestions []Suggestion `json:"suggestions"`
	Timestamp   time.Time    `json:"timestamp"`
}
