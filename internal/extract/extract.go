// Package extract turns a raw LLM completion into a structured suggestion list.
//
// THE PROBLEM:
// We PROMPT the model to answer with a bare JSON array, but prompting is not a
// contract. Real completions arrive wrapped in ```json fences, prefixed with
// prose ("Sure! Here are my suggestions:"), or as free text with no JSON at
// all. This package is the tolerant boundary between "whatever the model
// said" and the typed []model.Suggestion the rest of the app works with.
//
// THE CONTRACT:
// Suggestions never fails and never returns an empty slice. The pipeline is:
//
//	strip code fences → greedy bracket match → parse → coerce to a list
//
// and if any step comes up empty, the whole cleaned text becomes a single
// free-text suggestion. Callers can rely on always getting something usable.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mhasan/pr-reviewer/internal/model"
)

// fenceRe strips markdown code-fence markers. The ```json alternative is
// listed first so the language tag is consumed together with the fence.
var fenceRe = regexp.MustCompile("```json\n?|```\n?")

// jsonRe greedily matches the first bracket-delimited substring — everything
// from the first '[' to the last ']' (or '{' to the last '}'). Greedy on
// purpose: suggestion bodies may contain nested brackets, and the model's
// answer is expected to be one top-level array.
var jsonRe = regexp.MustCompile(`(?s)\[.*\]|\{.*\}`)

// Suggestions extracts a suggestion list from raw LLM output.
func Suggestions(raw string) []model.Suggestion {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))

	if match := jsonRe.FindString(cleaned); match != "" {
		if list, ok := parse(match); ok {
			return list
		}
	}

	// Fallback: no JSON found, or it didn't parse. The model's answer is
	// still a review — wrap it whole as one free-text suggestion.
	return []model.Suggestion{{Comment: cleaned, Code: nil}}
}

// parse attempts to decode a bracket-delimited substring into suggestions.
// A top-level object is coerced to a single-element list. An empty array is
// rejected (ok=false) so the caller degrades to the free-text fallback —
// the extractor's promise is "always at least one suggestion".
func parse(s string) ([]model.Suggestion, bool) {
	if strings.HasPrefix(s, "[") {
		var list []model.Suggestion
		if err := json.Unmarshal([]byte(s), &list); err != nil || len(list) == 0 {
			return nil, false
		}
		return list, true
	}

	var one model.Suggestion
	if err := json.Unmarshal([]byte(s), &one); err != nil {
		return nil, false
	}
	return []model.Suggestion{one}, true
}
