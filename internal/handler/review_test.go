package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/handler"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// MockReviewer implements handler.Reviewer for testing without a live LLM.
type MockReviewer struct {
	CapturedCode string
	ReturnSugg   []model.Suggestion
	ReturnErr    error
}

func (m *MockReviewer) Review(_ context.Context, code string) ([]model.Suggestion, error) {
	m.CapturedCode = code
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnSugg, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReviewHandler_HandleReview(t *testing.T) {
	logger := testLogger()

	t.Run("valid review", func(t *testing.T) {
		code := "if (x == y) {}"
		fix := "if (x === y) {}"
		mock := &MockReviewer{
			ReturnSugg: []model.Suggestion{{Comment: "Use strict equality", Code: &fix}},
		}
		h := handler.NewReviewHandler(mock, logger)

		body, _ := json.Marshal(map[string]string{"code": code})
		req := httptest.NewRequest(http.MethodPost, "/api/review", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.HandleReview(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, code, mock.CapturedCode)

		var res struct {
			Suggestions []model.Suggestion `json:"suggestions"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Len(t, res.Suggestions, 1)
		assert.Equal(t, "Use strict equality", res.Suggestions[0].Comment)
	})

	t.Run("invalid request body", func(t *testing.T) {
		h := handler.NewReviewHandler(&MockReviewer{}, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/review", bytes.NewBufferString(`{"code":`))
		rr := httptest.NewRecorder()

		h.HandleReview(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("validation error from service", func(t *testing.T) {
		mock := &MockReviewer{ReturnErr: apperror.ValidationFailed("code", "No code provided")}
		h := handler.NewReviewHandler(mock, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/review", bytes.NewBufferString(`{"code":""}`))
		rr := httptest.NewRecorder()

		h.HandleReview(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "validation_error", res.Error)
		assert.Equal(t, "No code provided", res.Message)
	})

	t.Run("upstream error carries details", func(t *testing.T) {
		mock := &MockReviewer{
			ReturnErr: apperror.Upstream("Failed to get response from OpenRouter", `{"error":"rate limited"}`),
		}
		h := handler.NewReviewHandler(mock, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/review", bytes.NewBufferString(`{"code":"x"}`))
		rr := httptest.NewRecorder()

		h.HandleReview(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "upstream_error", res.Error)
		assert.Equal(t, `{"error":"rate limited"}`, res.Details)
	})
}
