package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"cadence/internal/textutil"
	"cadence/internal/trackkey"
)

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	Rows       int
	Imported   int
	Duplicates int
	Skipped    int
}

// ExportSummary reports the outcome of a CSV export.
type ExportSummary struct {
	Rows int
	Path string
}

const (
	colTitle            = "title"
	colArtist           = "artist"
	colExternalID       = "external_id"
	colSourceLink       = "source_link"
	colTempo            = "tempo"
	colMode             = "mode"
	colValence          = "valence"
	colArousal          = "arousal"
	colLyrics           = "lyrics"
	colLyricsStatus     = "lyrics_status"
	colTempoSource      = "tempo_source"
	colModeSource       = "mode_source"
	colValenceSource    = "valence_source"
	colArousalSource    = "arousal_source"
	colTempoEvidence    = "tempo_evidence"
	colModeEvidence     = "mode_evidence"
	colValenceEvidence  = "valence_evidence"
	colArousalEvidence  = "arousal_evidence"
	colListeningContext = "listening_context"
	colContraind        = "contraindications"
	colCurator          = "curator"
	colDateAdded        = "date_added"
)

// resolveHeader maps a CSV header cell to a canonical column identifier.
// Matching is case-insensitive and treats underscores as spaces, so the
// historical spellings ("BPM_evidence", "Lyric sentiment valence") and the
// short forms ("bpm", "valence") land on the same column.
func resolveHeader(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	normalized = strings.Join(strings.Fields(normalized), " ")

	switch normalized {
	case "title", "track title":
		return colTitle
	case "artist", "artists":
		return colArtist
	case "track id", "external id", "spotify track id":
		return colExternalID
	case "source link", "source url", "link", "url":
		return colSourceLink
	case "bpm", "tempo", "tempo bpm":
		return colTempo
	case "mode":
		return colMode
	case "lyric sentiment valence", "lyric valence", "valence":
		return colValence
	case "lyric sentiment arousal", "lyric arousal", "arousal":
		return colArousal
	case "lyrics":
		return colLyrics
	case "lyrics status", "lyric status":
		return colLyricsStatus
	case "bpm source", "tempo source":
		return colTempoSource
	case "mode source":
		return colModeSource
	case "valence source", "lyric valence source", "lyricval source":
		return colValenceSource
	case "arousal source", "lyric arousal source", "lyricaro source":
		return colArousalSource
	case "bpm evidence", "tempo evidence":
		return colTempoEvidence
	case "mode evidence":
		return colModeEvidence
	case "lyricval evidence", "valence evidence", "lyric valence evidence":
		return colValenceEvidence
	case "lyricaro evidence", "arousal evidence", "lyric arousal evidence":
		return colArousalEvidence
	case "listening context":
		return colListeningContext
	case "contraindications", "contraindication":
		return colContraind
	case "curator":
		return colCurator
	case "date added":
		return colDateAdded
	default:
		return ""
	}
}

// ImportCSV loads tracks from a catalog CSV file. Rows without both a title
// and an artist are skipped, numeric coercion failures become absent values,
// and rows whose normalized key already exists are counted as duplicates.
func (s *Store) ImportCSV(ctx context.Context, path string) (*ImportSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog csv: %w", err)
	}
	defer file.Close()
	return s.importCSV(ctx, file)
}

func (s *Store) importCSV(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		// Spreadsheet exports often lead with a UTF-8 byte order mark.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		if canonical := resolveHeader(name); canonical != "" {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = idx
			}
		}
	}
	if _, ok := columns[colTitle]; !ok {
		return nil, errors.New("catalog csv has no recognizable title column")
	}
	if _, ok := columns[colArtist]; !ok {
		return nil, errors.New("catalog csv has no recognizable artist column")
	}

	summary := &ImportSummary{}
	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read csv row %d: %w", summary.Rows+2, err)
		}
		summary.Rows++

		cell := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		title := textutil.FixMojibake(cell(colTitle))
		artist := textutil.FixMojibake(cell(colArtist))
		if title == "" || artist == "" {
			summary.Skipped++
			continue
		}

		key := trackkey.Normalize(title, artist)
		existing, err := s.FindByKey(ctx, key)
		if err != nil {
			return summary, err
		}
		if existing != nil {
			summary.Duplicates++
			continue
		}

		track := &Track{
			Title:             title,
			Artist:            artist,
			ExternalID:        cell(colExternalID),
			SourceLink:        cell(colSourceLink),
			NormalizedKey:     key,
			Status:            StatusPending,
			Lyrics:            cell(colLyrics),
			LyricsStatus:      cell(colLyricsStatus),
			ListeningContext:  cell(colListeningContext),
			Contraindications: cell(colContraind),
			Curator:           cell(colCurator),
			DateAdded:         cell(colDateAdded),
			TempoEvidence:     strings.ToLower(cell(colTempoEvidence)),
			ModeEvidence:      strings.ToLower(cell(colModeEvidence)),
			ValenceEvidence:   strings.ToLower(cell(colValenceEvidence)),
			ArousalEvidence:   strings.ToLower(cell(colArousalEvidence)),
		}
		if track.DateAdded == "" {
			track.DateAdded = time.Now().UTC().Format("2006-01-02")
		}

		if tempo, ok := parseCSVNumber(cell(colTempo)); ok {
			track.SetFeatureNumber(FeatureTempo, tempo, featureSourceOr(cell(colTempoSource)))
		}
		if mode := coerceMode(cell(colMode)); mode != "" {
			track.SetFeatureText(FeatureMode, mode, featureSourceOr(cell(colModeSource)))
		}
		// Exact zeros in the sentiment columns are artifacts of earlier
		// tooling, never real measurements.
		if valence, ok := parseCSVNumber(cell(colValence)); ok && valence != 0 {
			track.SetFeatureNumber(FeatureValence, valence, featureSourceOr(cell(colValenceSource)))
		}
		if arousal, ok := parseCSVNumber(cell(colArousal)); ok && arousal != 0 {
			track.SetFeatureNumber(FeatureArousal, arousal, featureSourceOr(cell(colArousalSource)))
		}

		if _, err := s.InsertTrack(ctx, track); err != nil {
			return summary, fmt.Errorf("import row %d: %w", summary.Rows+1, err)
		}
		summary.Imported++
	}
	return summary, nil
}

func featureSourceOr(source string) string {
	if source != "" {
		return source
	}
	return "input"
}

func parseCSVNumber(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

// coerceMode maps the numeric major/minor encoding onto names and passes
// text modes through unchanged.
func coerceMode(value string) string {
	switch strings.TrimSpace(value) {
	case "":
		return ""
	case "1", "1.0":
		return "Major"
	case "0", "0.0":
		return "Minor"
	default:
		return strings.TrimSpace(value)
	}
}

var exportHeader = []string{
	"Title", "Artist", "Track ID", "Source Link",
	"BPM", "Mode", "Lyric sentiment valence", "Lyric sentiment arousal",
	"Lyrics", "Lyrics Status",
	"BPM Source", "Mode Source", "Valence Source", "Arousal Source",
	"BPM_evidence", "Mode_evidence", "LyricVal_evidence", "LyricAro_evidence",
	"Listening Context", "Contraindications", "Curator", "Date added",
	"BPM_score", "Mode_score", "LyricVal_score", "LyricAro_score",
	"BPM_weight", "Mode_weight", "LyricVal_weight", "LyricAro_weight",
	"Total_score", "Letter_grade",
}

// ExportCSV writes the catalog ordered by composite score (best first,
// unscored last). The file lands atomically via a temp file rename.
func (s *Store) ExportCSV(ctx context.Context, path string) (*ExportSummary, error) {
	tracks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sortTracksForExport(tracks)

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create export file: %w", err)
	}

	writer := csv.NewWriter(file)
	writeErr := writer.Write(exportHeader)
	for _, track := range tracks {
		if writeErr != nil {
			break
		}
		if err := ctx.Err(); err != nil {
			writeErr = err
			break
		}
		writeErr = writer.Write(exportRecord(track))
	}
	if writeErr == nil {
		writer.Flush()
		writeErr = writer.Error()
	}
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("write export file: %w", writeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("finalize export file: %w", err)
	}

	return &ExportSummary{Rows: len(tracks), Path: path}, nil
}

func sortTracksForExport(tracks []*Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		a, b := tracks[i].CompositeScore, tracks[j].CompositeScore
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}

func exportRecord(track *Track) []string {
	return []string{
		track.Title,
		track.Artist,
		track.ExternalID,
		track.SourceLink,
		formatOptionalFloat(track.TempoBPM),
		formatOptionalString(track.Mode),
		formatOptionalFloat(track.LyricValence),
		formatOptionalFloat(track.LyricArousal),
		track.Lyrics,
		track.LyricsStatus,
		track.TempoSource,
		track.ModeSource,
		track.ValenceSource,
		track.ArousalSource,
		track.TempoEvidence,
		track.ModeEvidence,
		track.ValenceEvidence,
		track.ArousalEvidence,
		track.ListeningContext,
		track.Contraindications,
		track.Curator,
		track.DateAdded,
		formatOptionalFloat(track.TempoScore),
		formatOptionalFloat(track.ModeScore),
		formatOptionalFloat(track.ValenceScore),
		formatOptionalFloat(track.ArousalScore),
		formatOptionalFloat(track.TempoWeight),
		formatOptionalFloat(track.ModeWeight),
		formatOptionalFloat(track.ValenceWeight),
		formatOptionalFloat(track.ArousalWeight),
		formatOptionalFloat(track.CompositeScore),
		track.LetterGrade,
	}
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func formatOptionalString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
