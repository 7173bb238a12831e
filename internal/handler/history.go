package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// HistoryStore is the service contract the history endpoints depend on.
type HistoryStore interface {
	Save(ctx context.Context, username, code string, suggestions []model.Suggestion) (*model.HistoryRecord, error)
	List(ctx context.Context, username string) ([]model.HistoryRecord, error)
	DeleteOne(ctx context.Context, username, id string) error
	DeleteAll(ctx context.Context, username string) error
}

// HistoryHandler exposes the per-user review history.
//
// Every route here sits behind RequireAuth, so the principal is always in
// the context; the username is taken from there and NEVER from the request
// body — a client cannot read or delete another user's history by naming
// them.
type HistoryHandler struct {
	history HistoryStore
	logger  *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(history HistoryStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// username pulls the authenticated user's login out of the context.
func (h *HistoryHandler) username(r *http.Request) string {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return ""
	}
	return principal.Username
}

// saveHistoryRequest is the POST /api/history body.
type saveHistoryRequest struct {
	Code        string             `json:"code"`
	Suggestions []model.Suggestion `json:"suggestions"`
}

// HandleSave records one review run.
//
// HTTP: POST /api/history
// REQUEST BODY: {"code": "...", "suggestions": [...]}
// RESPONSE: 201 with the stored record (server-assigned id and timestamp)
func (h *HistoryHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req saveHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid history JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}

	rec, err := h.history.Save(r.Context(), h.username(r), req.Code, req.Suggestions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// HandleList returns the user's entries, newest first.
//
// HTTP: GET /api/history
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.List(r.Context(), h.username(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// HandleDeleteOne removes a single entry the user owns.
//
// HTTP: DELETE /api/history/{id}
func (h *HistoryHandler) HandleDeleteOne(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.history.DeleteOne(r.Context(), h.username(r), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "History entry deleted successfully"})
}

// HandleDeleteAll clears the user's history.
//
// HTTP: DELETE /api/history
func (h *HistoryHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.history.DeleteAll(r.Context(), h.username(r)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "All history entries deleted successfully"})
}
