package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/mhasan/pr-reviewer/internal/apperror"
	"github.com/mhasan/pr-reviewer/internal/model"
	"github.com/mhasan/pr-reviewer/internal/repository"
)

// HistoryRepo implements repository.HistoryRepository on top of DB.
type HistoryRepo struct {
	db *DB
}

// Compile-time check that *HistoryRepo implements repository.HistoryRepository.
var _ repository.HistoryRepository = (*HistoryRepo)(nil)

// Create inserts a new history record, generating its id and timestamp.
// The suggestions slice is serialised to a JSON TEXT column — the record is
// read back whole or not at all, so there is nothing to gain from splitting
// it into rows.
func (r *HistoryRepo) Create(ctx context.Context, rec *model.HistoryRecord) error {
	rec.ID = xid.New().String()
	rec.Timestamp = time.Now()

	suggestions, err := json.Marshal(rec.Suggestions)
	if err != nil {
		return fmt.Errorf("sqlite: encoding suggestions: %w", err)
	}

	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO history (id, user, code, suggestions, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID,
		rec.User,
		rec.Code,
		string(suggestions),
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating history record: %w", err)
	}

	return nil
}

// ListByUser returns all of one user's records, newest first.
func (r *HistoryRepo) ListByUser(ctx context.Context, username string) ([]model.HistoryRecord, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user, code, suggestions, timestamp
		 FROM history
		 WHERE user = ?
		 ORDER BY timestamp DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing history: %w", err)
	}
	defer rows.Close()

	records := make([]model.HistoryRecord, 0)

	for rows.Next() {
		var rec model.HistoryRecord
		var suggestions string
		if err := rows.Scan(
			&rec.ID, &rec.User, &rec.Code, &suggestions, &rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning history row: %w", err)
		}
		if err := json.Unmarshal([]byte(suggestions), &rec.Suggestions); err != nil {
			return nil, fmt.Errorf("sqlite: decoding suggestions for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating history: %w", err)
	}

	return records, nil
}

// Delete removes one record owned by username.
//
// The ownership check is part of the WHERE clause, so a record belonging to
// someone else is indistinguishable from a record that never existed — both
// come back as NotFound, and nothing leaks about other users' history.
func (r *HistoryRepo) Delete(ctx context.Context, username, id string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM history WHERE id = ? AND user = ?`,
		id, username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting history record %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("history entry", id)
	}

	return nil
}

// DeleteAllByUser wipes a user's entire history. Deleting nothing is fine —
// "clear history" on an empty panel is a no-op, not an error.
func (r *HistoryRepo) DeleteAllByUser(ctx context.Context, username string) error {
	_, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM history WHERE user = ?`,
		username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting history for %s: %w", username, err)
	}
	return nil
}
