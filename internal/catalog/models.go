package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a catalog track.
type Status string

const (
	StatusPending    Status = "pending"
	StatusEnriching  Status = "enriching"
	StatusEnriched   Status = "enriched"
	StatusAnnotating Status = "annotating"
	StatusAnnotated  Status = "annotated"
	StatusScoring    Status = "scoring"
	StatusScored     Status = "scored"
	StatusFailed     Status = "failed"
	StatusReview     Status = "review"
)

var allStatuses = []Status{
	StatusPending,
	StatusEnriching,
	StatusEnriched,
	StatusAnnotating,
	StatusAnnotated,
	StatusScoring,
	StatusScored,
	StatusFailed,
	StatusReview,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusEnriching:  {},
	StatusAnnotating: {},
	StatusScoring:    {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// Feature identifies one of the musical feature fields the pipeline resolves.
type Feature string

const (
	FeatureTempo   Feature = "tempo_bpm"
	FeatureMode    Feature = "mode"
	FeatureValence Feature = "lyric_valence"
	FeatureArousal Feature = "lyric_arousal"
)

var allFeatures = []Feature{FeatureTempo, FeatureMode, FeatureValence, FeatureArousal}

// AllFeatures returns the ordered list of feature fields.
func AllFeatures() []Feature {
	cp := make([]Feature, len(allFeatures))
	copy(cp, allFeatures)
	return cp
}

// IsNumeric reports whether the feature carries a numeric value. Mode is the
// only categorical feature.
func (f Feature) IsNumeric() bool {
	return f != FeatureMode
}

// DatabaseHealth captures diagnostic information about the catalog database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalTracks      int
	Error            string
}

// HealthSummary describes aggregated catalog counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Scored     int
	Failed     int
	Review     int
}

// Track represents a catalog entry persisted in SQLite. Feature values are
// typed optionals: a nil pointer means the value is missing, never zero.
type Track struct {
	ID            int64
	Title         string
	Artist        string
	ExternalID    string
	SourceLink    string
	NormalizedKey string
	Status        Status

	TempoBPM     *float64
	Mode         *string
	LyricValence *float64
	LyricArousal *float64

	TempoSource   string
	ModeSource    string
	ValenceSource string
	ArousalSource string

	TempoEvidence   string
	ModeEvidence    string
	ValenceEvidence string
	ArousalEvidence string

	Lyrics            string
	LyricsStatus      string
	ListeningContext  string
	Contraindications string

	Curator   string
	DateAdded string

	TempoScore     *float64
	ModeScore      *float64
	ValenceScore   *float64
	ArousalScore   *float64
	TempoWeight    *float64
	ModeWeight     *float64
	ValenceWeight  *float64
	ArousalWeight  *float64
	CompositeScore *float64
	LetterGrade    string

	ErrorMessage string
	NeedsReview  bool
	ReviewReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (t Track) IsProcessing() bool {
	_, ok := processingStatuses[t.Status]
	return ok
}

// HasFeature reports whether the named feature currently carries a value.
func (t *Track) HasFeature(f Feature) bool {
	switch f {
	case FeatureTempo:
		return t.TempoBPM != nil
	case FeatureMode:
		return t.Mode != nil && strings.TrimSpace(*t.Mode) != ""
	case FeatureValence:
		return t.LyricValence != nil
	case FeatureArousal:
		return t.LyricArousal != nil
	default:
		return false
	}
}

// FeatureNumber returns the numeric value for a numeric feature.
func (t *Track) FeatureNumber(f Feature) (float64, bool) {
	switch f {
	case FeatureTempo:
		if t.TempoBPM != nil {
			return *t.TempoBPM, true
		}
	case FeatureValence:
		if t.LyricValence != nil {
			return *t.LyricValence, true
		}
	case FeatureArousal:
		if t.LyricArousal != nil {
			return *t.LyricArousal, true
		}
	}
	return 0, false
}

// FeatureText returns the categorical value for a text feature.
func (t *Track) FeatureText(f Feature) (string, bool) {
	if f == FeatureMode && t.Mode != nil && strings.TrimSpace(*t.Mode) != "" {
		return *t.Mode, true
	}
	return "", false
}

// SetFeatureNumber stores a numeric feature value together with its source
// label. Source attribution happens here and nowhere else.
func (t *Track) SetFeatureNumber(f Feature, value float64, source string) {
	v := value
	switch f {
	case FeatureTempo:
		t.TempoBPM = &v
		t.TempoSource = source
	case FeatureValence:
		t.LyricValence = &v
		t.ValenceSource = source
	case FeatureArousal:
		t.LyricArousal = &v
		t.ArousalSource = source
	}
}

// SetFeatureText stores a categorical feature value together with its source label.
func (t *Track) SetFeatureText(f Feature, value, source string) {
	if f != FeatureMode {
		return
	}
	v := value
	t.Mode = &v
	t.ModeSource = source
}

// FeatureSource returns the recorded source label for a feature, or empty.
func (t *Track) FeatureSource(f Feature) string {
	switch f {
	case FeatureTempo:
		return t.TempoSource
	case FeatureMode:
		return t.ModeSource
	case FeatureValence:
		return t.ValenceSource
	case FeatureArousal:
		return t.ArousalSource
	default:
		return ""
	}
}

// FeatureEvidence returns the curated evidence tier annotation for a feature, or empty.
func (t *Track) FeatureEvidence(f Feature) string {
	switch f {
	case FeatureTempo:
		return t.TempoEvidence
	case FeatureMode:
		return t.ModeEvidence
	case FeatureValence:
		return t.ValenceEvidence
	case FeatureArousal:
		return t.ArousalEvidence
	default:
		return ""
	}
}

// MissingFeatures lists the features without a value, in canonical order.
func (t *Track) MissingFeatures() []Feature {
	var missing []Feature
	for _, f := range allFeatures {
		if !t.HasFeature(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clone returns a deep copy so enrichment can merge into a fresh snapshot
// without mutating the caller's track.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	cp := *t
	cp.TempoBPM = cloneFloat(t.TempoBPM)
	cp.Mode = cloneString(t.Mode)
	cp.LyricValence = cloneFloat(t.LyricValence)
	cp.LyricArousal = cloneFloat(t.LyricArousal)
	cp.TempoScore = cloneFloat(t.TempoScore)
	cp.ModeScore = cloneFloat(t.ModeScore)
	cp.ValenceScore = cloneFloat(t.ValenceScore)
	cp.ArousalScore = cloneFloat(t.ArousalScore)
	cp.TempoWeight = cloneFloat(t.TempoWeight)
	cp.ModeWeight = cloneFloat(t.ModeWeight)
	cp.ValenceWeight = cloneFloat(t.ValenceWeight)
	cp.ArousalWeight = cloneFloat(t.ArousalWeight)
	cp.CompositeScore = cloneFloat(t.CompositeScore)
	return &cp
}

// SetFailed marks the track as failed with the given error message.
func (t *Track) SetFailed(message string) {
	t.Status = StatusFailed
	t.ErrorMessage = message
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
