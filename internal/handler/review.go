package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// Reviewer is the service contract this handler depends on. Kept as an
// interface so handler tests swap in a mock instead of a live LLM client.
type Reviewer interface {
	Review(ctx context.Context, code string) ([]model.Suggestion, error)
}

// ReviewHandler exposes the AI review endpoint.
type ReviewHandler struct {
	reviews Reviewer
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews Reviewer, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// reviewRequest is the POST /api/review body.
type reviewRequest struct {
	Code string `json:"code"`
}

// reviewResponse wraps the suggestions so the shape can grow without
// breaking the frontend.
type reviewResponse struct {
	Suggestions []model.Suggestion `json:"suggestions"`
}

// HandleReview runs the submitted code through the AI reviewer.
//
// HTTP: POST /api/review
// Auth: Required — reviews cost upstream tokens, so anonymous use is off.
// REQUEST BODY: {"code": "function foo() {...}"}
// RESPONSE: {"suggestions": [{"comment": "...", "code": "..." | null}]}
func (h *ReviewHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid review JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return
	}

	suggestions, err := h.reviews.Review(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reviewResponse{Suggestions: suggestions})
}
