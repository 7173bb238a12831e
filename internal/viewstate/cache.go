package viewstate

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mhasan/pr-reviewer/internal/model"
)

// Cache persists the draft and the last suggestions across restarts. The
// lookups return ok=false when nothing usable is stored; writes are
// best-effort — losing a cached draft is an inconvenience, not an error the
// state machine can do anything about.
type Cache interface {
	GetDraft() (string, bool)
	SetDraft(code string)
	GetSuggestions() ([]model.Suggestion, bool)
	SetSuggestions(suggestions []model.Suggestion)
	Clear()
}

// nopCache is used when no cache is configured.
type nopCache struct{}

func (nopCache) GetDraft() (string, bool)                   { return "", false }
func (nopCache) SetDraft(string)                            {}
func (nopCache) GetSuggestions() ([]model.Suggestion, bool) { return nil, false }
func (nopCache) SetSuggestions([]model.Suggestion)          {}
func (nopCache) Clear()                                     {}

// File names inside the cache directory. The names mirror the browser
// client's storage keys so the two stay greppable as a pair.
const (
	draftCacheFile       = "aiInputcode"
	suggestionsCacheFile = "aiSuggestions"
)

// FileCache stores the draft and suggestions as files in a directory.
type FileCache struct {
	dir string
}

// Compile-time check that *FileCache implements Cache.
var _ Cache = (*FileCache)(nil)

// NewFileCache creates the directory if needed and returns a cache over it.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) GetDraft() (string, bool) {
	data, err := os.ReadFile(filepath.Join(c.dir, draftCacheFile))
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *FileCache) SetDraft(code string) {
	_ = os.WriteFile(filepath.Join(c.dir, draftCacheFile), []byte(code), 0644)
}

func (c *FileCache) GetSuggestions() ([]model.Suggestion, bool) {
	data, err := os.ReadFile(filepath.Join(c.dir, suggestionsCacheFile))
	if err != nil {
		return nil, false
	}

	var suggestions []model.Suggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		// A corrupt cache entry is treated as absent.
		return nil, false
	}
	return suggestions, true
}

func (c *FileCache) SetSuggestions(suggestions []model.Suggestion) {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(c.dir, suggestionsCacheFile), data, 0644)
}

func (c *FileCache) Clear() {
	_ = os.Remove(filepath.Join(c.dir, draftCacheFile))
	_ = os.Remove(filepath.Join(c.dir, suggestionsCacheFile))
}
