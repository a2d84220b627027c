package catalog

import (
	"database/sql"
	"errors"
	"time"
)

const trackColumns = "id, title, artist, external_id, source_link, normalized_key, status, " +
	"tempo_bpm, mode, lyric_valence, lyric_arousal, " +
	"tempo_source, mode_source, valence_source, arousal_source, " +
	"tempo_evidence, mode_evidence, valence_evidence, arousal_evidence, " +
	"lyrics, lyrics_status, listening_context, contraindications, curator, date_added, " +
	"tempo_score, mode_score, valence_score, arousal_score, " +
	"tempo_weight, mode_weight, valence_weight, arousal_weight, " +
	"composite_score, letter_grade, error_message, needs_review, review_reason, " +
	"created_at, updated_at"

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*Track, error) {
	var (
		id                int64
		title             string
		artist            string
		externalID        sql.NullString
		sourceLink        sql.NullString
		normalizedKey     string
		statusStr         string
		tempoBPM          sql.NullFloat64
		mode              sql.NullString
		lyricValence      sql.NullFloat64
		lyricArousal      sql.NullFloat64
		tempoSource       sql.NullString
		modeSource        sql.NullString
		valenceSource     sql.NullString
		arousalSource     sql.NullString
		tempoEvidence     sql.NullString
		modeEvidence      sql.NullString
		valenceEvidence   sql.NullString
		arousalEvidence   sql.NullString
		lyrics            sql.NullString
		lyricsStatus      sql.NullString
		listeningContext  sql.NullString
		contraindications sql.NullString
		curator           sql.NullString
		dateAdded         sql.NullString
		tempoScore        sql.NullFloat64
		modeScore         sql.NullFloat64
		valenceScore      sql.NullFloat64
		arousalScore      sql.NullFloat64
		tempoWeight       sql.NullFloat64
		modeWeight        sql.NullFloat64
		valenceWeight     sql.NullFloat64
		arousalWeight     sql.NullFloat64
		compositeScore    sql.NullFloat64
		letterGrade       sql.NullString
		errorMessage      sql.NullString
		needsReview       sql.NullInt64
		reviewReason      sql.NullString
		createdRaw        sql.NullString
		updatedRaw        sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&artist,
		&externalID,
		&sourceLink,
		&normalizedKey,
		&statusStr,
		&tempoBPM,
		&mode,
		&lyricValence,
		&lyricArousal,
		&tempoSource,
		&modeSource,
		&valenceSource,
		&arousalSource,
		&tempoEvidence,
		&modeEvidence,
		&valenceEvidence,
		&arousalEvidence,
		&lyrics,
		&lyricsStatus,
		&listeningContext,
		&contraindications,
		&curator,
		&dateAdded,
		&tempoScore,
		&modeScore,
		&valenceScore,
		&arousalScore,
		&tempoWeight,
		&modeWeight,
		&valenceWeight,
		&arousalWeight,
		&compositeScore,
		&letterGrade,
		&errorMessage,
		&needsReview,
		&reviewReason,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	track := &Track{
		ID:                id,
		Title:             title,
		Artist:            artist,
		ExternalID:        externalID.String,
		SourceLink:        sourceLink.String,
		NormalizedKey:     normalizedKey,
		Status:            Status(statusStr),
		TempoSource:       tempoSource.String,
		ModeSource:        modeSource.String,
		ValenceSource:     valenceSource.String,
		ArousalSource:     arousalSource.String,
		TempoEvidence:     tempoEvidence.String,
		ModeEvidence:      modeEvidence.String,
		ValenceEvidence:   valenceEvidence.String,
		ArousalEvidence:   arousalEvidence.String,
		Lyrics:            lyrics.String,
		LyricsStatus:      lyricsStatus.String,
		ListeningContext:  listeningContext.String,
		Contraindications: contraindications.String,
		Curator:           curator.String,
		DateAdded:         dateAdded.String,
		LetterGrade:       letterGrade.String,
		ErrorMessage:      errorMessage.String,
		ReviewReason:      reviewReason.String,
	}

	track.TempoBPM = nullFloatPtr(tempoBPM)
	track.LyricValence = nullFloatPtr(lyricValence)
	track.LyricArousal = nullFloatPtr(lyricArousal)
	track.Mode = nullStringPtr(mode)
	track.TempoScore = nullFloatPtr(tempoScore)
	track.ModeScore = nullFloatPtr(modeScore)
	track.ValenceScore = nullFloatPtr(valenceScore)
	track.ArousalScore = nullFloatPtr(arousalScore)
	track.TempoWeight = nullFloatPtr(tempoWeight)
	track.ModeWeight = nullFloatPtr(modeWeight)
	track.ValenceWeight = nullFloatPtr(valenceWeight)
	track.ArousalWeight = nullFloatPtr(arousalWeight)
	track.CompositeScore = nullFloatPtr(compositeScore)

	if needsReview.Valid {
		track.NeedsReview = needsReview.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		track.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		track.UpdatedAt = updated
	}
	return track, nil
}

func nullFloatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid || value.String == "" {
		return nil
	}
	v := value.String
	return &v
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableStringPtr(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
