package catalog

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls tracks in processing states back to the start of
// their current stage. Used on startup after an interrupted run.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE tracks
         SET status = CASE status
             WHEN ? THEN ?
             WHEN ? THEN ?
             WHEN ? THEN ?
             ELSE status
         END,
             updated_at = ?
         WHERE status IN (?, ?, ?)`,
		StatusEnriching, StatusPending,
		StatusAnnotating, StatusEnriched,
		StatusScoring, StatusAnnotated,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusEnriching,
		StatusAnnotating,
		StatusScoring,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck tracks: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed tracks back to pending for reprocessing. With no
// ids the whole failed set retries.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE tracks
            SET status = ?, error_message = NULL, needs_review = 0, review_reason = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed tracks: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE tracks
        SET status = ?, error_message = NULL, needs_review = 0, review_reason = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = '` + string(StatusFailed) + `'`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected tracks: %w", err)
	}
	return res.RowsAffected()
}
