package lyrics

import (
	"regexp"
	"strings"
)

// Integrity statuses recorded on tracks. Only GOOD text feeds sentiment
// analysis; the rest explain why a track has no lyric-derived features.
const (
	IntegrityGood         = "GOOD"
	IntegrityShort        = "SHORT"
	IntegritySummary      = "SUMMARY"
	IntegrityMissing      = "MISSING"
	IntegrityInstrumental = "INSTRUMENTAL"
)

// Texts below this word count are fragments, not full lyrics.
const shortWordCount = 25

var instrumentalPattern = regexp.MustCompile(`\b(instrumental|no lyrics|piano|sonata|etude|nocturne|symphony)\b`)

// Phrases that show up in prose descriptions of a song rather than in the
// lyric itself.
var summaryPhrases = []string{
	"originally written", "composed", "published", "recorded",
	"song has", "as the song", "this song", "track features",
	"performed by", "is about", "theme of", "lyrics talk about",
	"music was", "believed to be", "released in", "instrumental",
}

// ClassifyIntegrity buckets lyric text by how usable it is for sentiment
// analysis. Summary prose can read as strongly positive or negative while
// measuring the description instead of the song, so it is flagged rather
// than analyzed.
func ClassifyIntegrity(text string) string {
	trimmed := strings.TrimSpace(text)
	words := len(strings.Fields(trimmed))
	if words == 0 {
		return IntegrityMissing
	}

	lower := strings.ToLower(trimmed)
	if instrumentalPattern.MatchString(lower) {
		return IntegrityInstrumental
	}
	if words < shortWordCount {
		return IntegrityShort
	}
	for _, phrase := range summaryPhrases {
		if strings.Contains(lower, phrase) {
			return IntegritySummary
		}
	}
	return IntegrityGood
}

// Analyzable reports whether a status carries text worth running through
// sentiment analysis.
func Analyzable(status string) bool {
	return status == IntegrityGood
}
