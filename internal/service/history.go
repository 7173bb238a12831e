package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/model"
	"github.com/mhasan/pr-reviewer/internal/repository"
)

// HistoryService manages a user's saved review runs. Every operation is
// scoped to the calling user's name — there is no cross-user read or
// delete path, and the service re-checks the username rather than
// trusting the handler to have done so.
type HistoryService struct {
	repo   repository.HistoryRepository
	logger *slog.Logger
}

// NewHistoryService creates a HistoryService with the given repository.
func NewHistoryService(repo repository.HistoryRepository, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		repo:   repo,
		logger: logger,
	}
}

// Save records one review run for the user. The repository assigns the
// ID and timestamp.
func (s *HistoryService) Save(ctx context.Context, username, code string, suggestions []model.Suggestion) (*model.HistoryRecord, error) {
	if username == "" {
		return nil, apperror.Unauthorized("No user info found")
	}

	rec := &model.HistoryRecord{
		User:        username,
		Code:        code,
		Suggestions: suggestions,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving history entry: %w", err)
	}

	s.logger.Info("history entry saved",
		slog.String("user", username),
		slog.String("id", rec.ID),
	)

	return rec, nil
}

// List returns the user's entries, newest first.
func (s *HistoryService) List(ctx context.Context, username string) ([]model.HistoryRecord, error) {
	if username == "" {
		return nil, apperror.Unauthorized("No user info found")
	}

	records, err := s.repo.ListByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return records, nil
}

// DeleteOne removes a single entry the user owns. A foreign or missing ID
// both come back as ErrNotFound — the repository's ownership check makes
// the two indistinguishable, so existence of other users' entries never
// leaks.
func (s *HistoryService) DeleteOne(ctx context.Context, username, id string) error {
	if username == "" {
		return apperror.Unauthorized("No user info found")
	}
	if id == "" {
		return apperror.ValidationFailed("id", "No entry id provided")
	}

	if err := s.repo.Delete(ctx, username, id); err != nil {
		return err
	}

	s.logger.Info("history entry deleted",
		slog.String("user", username),
		slog.String("id", id),
	)
	return nil
}

// DeleteAll clears the user's history. An already-empty history is not an
// error.
func (s *HistoryService) DeleteAll(ctx context.Context, username string) error {
	if username == "" {
		return apperror.Unauthorized("No user info found")
	}

	if err := s.repo.DeleteAllByUser(ctx, username); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	s.logger.Info("history cleared", slog.String("user", username))
	return nil
}
