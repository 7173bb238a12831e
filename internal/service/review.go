// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository / clients     → database and upstream API access
//
// Services accept primitives plus a context, return domain errors from
// internal/apperror, and know nothing about HTTP. The handler translates
// both directions.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/extract"
	"github.com/mhasan/pr-reviewer/internal/model"
)

// The review prompt pair. The system prompt pins the output format; the
// user prompt carries the code. Prompted — not enforced: the extractor
// downstream tolerates whatever actually comes back.
const (
	reviewSystemPrompt = `You are a code reviewer. Provide suggestions as a JSON array with this exact format: [{"comment": "description", "code": "example or null"}]. Return ONLY the JSON array, no markdown formatting, no explanation.`
	reviewUserPrompt   = "Review this code and provide 3-5 specific suggestions:\n\n"
)

// DefaultMaxCodeLength bounds submissions server-side. This is a UX guard
// (keep prompts inside the model's useful context), not a hard system limit
// — override it via REVIEW_MAX_CODE_LENGTH.
const DefaultMaxCodeLength = 10000

// Completer is the one upstream operation the review flow needs. The llm
// package's Client satisfies it; tests substitute a canned implementation.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ReviewService turns a code blob into AI review suggestions.
type ReviewService struct {
	llm        Completer
	maxCodeLen int
	logger     *slog.Logger
}

// NewReviewService creates a ReviewService. maxCodeLen <= 0 selects
// DefaultMaxCodeLength.
func NewReviewService(llm Completer, maxCodeLen int, logger *slog.Logger) *ReviewService {
	if maxCodeLen <= 0 {
		maxCodeLen = DefaultMaxCodeLength
	}
	return &ReviewService{
		llm:        llm,
		maxCodeLen: maxCodeLen,
		logger:     logger,
	}
}

// MaxCodeLength exposes the configured bound for the handler's error text.
func (s *ReviewService) MaxCodeLength() int {
	return s.maxCodeLen
}

// Review validates the code, makes ONE completion call (no retry — a
// failure is surfaced with upstream details attached, and the user decides
// whether to resubmit), and extracts suggestions from whatever came back.
//
// Invalid input never reaches the upstream: both checks run before the
// Completer is touched.
func (s *ReviewService) Review(ctx context.Context, code string) ([]model.Suggestion, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "No code provided")
	}
	if len(code) > s.maxCodeLen {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("Code too long. Please keep it under %d characters.", s.maxCodeLen))
	}

	raw, err := s.llm.Complete(ctx, reviewSystemPrompt, reviewUserPrompt+code)
	if err != nil {
		s.logger.Error("completion call failed", slog.String("error", err.Error()))
		return nil, err
	}

	// The extractor cannot fail — worst case the whole completion becomes
	// one free-text suggestion.
	suggestions := extract.Suggestions(raw)

	s.logger.Info("review completed",
		slog.Int("codeLength", len(code)),
		slog.Int("suggestions", len(suggestions)),
	)

	return suggestions, nil
}
