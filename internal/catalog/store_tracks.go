package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertTrack persists a new track and returns the stored row.
func (s *Store) InsertTrack(ctx context.Context, track *Track) (*Track, error) {
	if track == nil {
		return nil, errors.New("track is nil")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	status := track.Status
	if status == "" {
		status = StatusPending
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO tracks (
            title, artist, external_id, source_link, normalized_key, status,
            tempo_bpm, mode, lyric_valence, lyric_arousal,
            tempo_source, mode_source, valence_source, arousal_source,
            tempo_evidence, mode_evidence, valence_evidence, arousal_evidence,
            lyrics, lyrics_status, listening_context, contraindications, curator, date_added,
            tempo_score, mode_score, valence_score, arousal_score,
            tempo_weight, mode_weight, valence_weight, arousal_weight,
            composite_score, letter_grade, error_message, needs_review, review_reason,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.Title,
		track.Artist,
		nullableString(track.ExternalID),
		nullableString(track.SourceLink),
		track.NormalizedKey,
		status,
		nullableFloat(track.TempoBPM),
		nullableStringPtr(track.Mode),
		nullableFloat(track.LyricValence),
		nullableFloat(track.LyricArousal),
		nullableString(track.TempoSource),
		nullableString(track.ModeSource),
		nullableString(track.ValenceSource),
		nullableString(track.ArousalSource),
		nullableString(track.TempoEvidence),
		nullableString(track.ModeEvidence),
		nullableString(track.ValenceEvidence),
		nullableString(track.ArousalEvidence),
		nullableString(track.Lyrics),
		nullableString(track.LyricsStatus),
		nullableString(track.ListeningContext),
		nullableString(track.Contraindications),
		nullableString(track.Curator),
		nullableString(track.DateAdded),
		nullableFloat(track.TempoScore),
		nullableFloat(track.ModeScore),
		nullableFloat(track.ValenceScore),
		nullableFloat(track.ArousalScore),
		nullableFloat(track.TempoWeight),
		nullableFloat(track.ModeWeight),
		nullableFloat(track.ValenceWeight),
		nullableFloat(track.ArousalWeight),
		nullableFloat(track.CompositeScore),
		nullableString(track.LetterGrade),
		nullableString(track.ErrorMessage),
		boolToInt(track.NeedsReview),
		nullableString(track.ReviewReason),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert track: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a track by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	return track, nil
}

// FindByKey returns the first track matching a normalized key.
func (s *Store) FindByKey(ctx context.Context, normalizedKey string) (*Track, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE normalized_key = ? ORDER BY id LIMIT 1`,
		normalizedKey,
	)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by key: %w", err)
	}
	return track, nil
}

// Update persists changes to an existing track.
func (s *Store) Update(ctx context.Context, track *Track) error {
	if track == nil {
		return errors.New("track is nil")
	}
	track.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE tracks
         SET title = ?, artist = ?, external_id = ?, source_link = ?, normalized_key = ?, status = ?,
             tempo_bpm = ?, mode = ?, lyric_valence = ?, lyric_arousal = ?,
             tempo_source = ?, mode_source = ?, valence_source = ?, arousal_source = ?,
             tempo_evidence = ?, mode_evidence = ?, valence_evidence = ?, arousal_evidence = ?,
             lyrics = ?, lyrics_status = ?, listening_context = ?, contraindications = ?,
             curator = ?, date_added = ?,
             tempo_score = ?, mode_score = ?, valence_score = ?, arousal_score = ?,
             tempo_weight = ?, mode_weight = ?, valence_weight = ?, arousal_weight = ?,
             composite_score = ?, letter_grade = ?, error_message = ?, needs_review = ?, review_reason = ?,
             updated_at = ?
         WHERE id = ?`,
		track.Title,
		track.Artist,
		nullableString(track.ExternalID),
		nullableString(track.SourceLink),
		track.NormalizedKey,
		track.Status,
		nullableFloat(track.TempoBPM),
		nullableStringPtr(track.Mode),
		nullableFloat(track.LyricValence),
		nullableFloat(track.LyricArousal),
		nullableString(track.TempoSource),
		nullableString(track.ModeSource),
		nullableString(track.ValenceSource),
		nullableString(track.ArousalSource),
		nullableString(track.TempoEvidence),
		nullableString(track.ModeEvidence),
		nullableString(track.ValenceEvidence),
		nullableString(track.ArousalEvidence),
		nullableString(track.Lyrics),
		nullableString(track.LyricsStatus),
		nullableString(track.ListeningContext),
		nullableString(track.Contraindications),
		nullableString(track.Curator),
		nullableString(track.DateAdded),
		nullableFloat(track.TempoScore),
		nullableFloat(track.ModeScore),
		nullableFloat(track.ValenceScore),
		nullableFloat(track.ArousalScore),
		nullableFloat(track.TempoWeight),
		nullableFloat(track.ModeWeight),
		nullableFloat(track.ValenceWeight),
		nullableFloat(track.ArousalWeight),
		nullableFloat(track.CompositeScore),
		nullableString(track.LetterGrade),
		nullableString(track.ErrorMessage),
		boolToInt(track.NeedsReview),
		nullableString(track.ReviewReason),
		track.UpdatedAt.Format(time.RFC3339Nano),
		track.ID,
	); err != nil {
		return fmt.Errorf("update track: %w", err)
	}
	return nil
}

// List returns tracks ordered by identifier, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return tracks, nil
}

// NextForStatuses returns the oldest track whose status matches one of the
// provided statuses. Returns nil when none match.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Track, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, status)
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE status IN (`+makePlaceholders(len(statuses))+`) ORDER BY id LIMIT 1`,
		args...,
	)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next track: %w", err)
	}
	return track, nil
}

// Remove deletes a track by identifier.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if err := s.execWithoutResultRetry(ctx, `DELETE FROM tracks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove track: %w", err)
	}
	return nil
}

// Clear removes every track from the catalog.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM tracks`)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// ClearFailed removes failed tracks.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM tracks WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed tracks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
