package lyrics

import (
	_ "embed"
	"regexp"
	"strconv"
	"strings"
)

// Sentiment holds the two lyric-derived feature values. Valence runs from -1
// (negative) to 1 (positive), arousal from 0 (measured) to 1 (emotive).
type Sentiment struct {
	Valence float64
	Arousal float64
}

//go:embed sentiment_lexicon.tsv
var lexiconData string

type lexEntry struct {
	polarity     float64
	subjectivity float64
	intensity    float64
}

var lexicon = parseLexicon(lexiconData)

var wordPattern = regexp.MustCompile(`[a-z']+`)

// A negation keeps influencing polarity across a short window of tokens, so
// "not a happy ending" still flips "happy".
const negationWindow = 3

var negations = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"neither": {},
	"nor":     {},
	"cannot":  {},
	"without": {},
}

func isNegation(token string) bool {
	if _, ok := negations[token]; ok {
		return true
	}
	return strings.HasSuffix(token, "n't")
}

// Analyze scores lyric text against the embedded sentiment lexicon. Each
// matched word contributes its polarity and subjectivity; intensifiers boost
// the following word and negations halve and flip polarity. The result is
// the mean over matched words, or the zero value when nothing matched.
func Analyze(text string) Sentiment {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)

	var (
		polaritySum     float64
		subjectivitySum float64
		matched         int
		intensity       = 1.0
		negationAge     int // tokens since the last negation, 0 when inactive
	)

	for _, token := range tokens {
		token = strings.Trim(token, "'")
		if token == "" {
			continue
		}
		if isNegation(token) {
			negationAge = 1
			intensity = 1.0
			continue
		}

		entry, ok := lexicon[token]
		if !ok {
			if negationAge > 0 {
				negationAge++
				if negationAge > negationWindow {
					negationAge = 0
				}
			}
			intensity = 1.0
			continue
		}

		if entry.isIntensifier() {
			intensity *= entry.intensity
			if negationAge > 0 {
				negationAge++
			}
			continue
		}

		polarity := clampRange(entry.polarity*intensity, -1, 1)
		subjectivity := clampRange(entry.subjectivity*intensity, 0, 1)
		if negationAge > 0 && negationAge <= negationWindow {
			polarity *= -0.5
		}

		polaritySum += polarity
		subjectivitySum += subjectivity
		matched++
		negationAge = 0
		intensity = 1.0
	}

	if matched == 0 {
		return Sentiment{}
	}
	return Sentiment{
		Valence: polaritySum / float64(matched),
		Arousal: subjectivitySum / float64(matched),
	}
}

func (e lexEntry) isIntensifier() bool {
	return e.polarity == 0 && e.subjectivity == 0 && e.intensity != 1
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseLexicon(data string) map[string]lexEntry {
	entries := make(map[string]lexEntry)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		polarity, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		subjectivity, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		intensity := 1.0
		if len(fields) > 3 {
			if parsed, err := strconv.ParseFloat(fields[3], 64); err == nil {
				intensity = parsed
			}
		}
		entries[strings.ToLower(fields[0])] = lexEntry{
			polarity:     polarity,
			subjectivity: subjectivity,
			intensity:    intensity,
		}
	}
	return entries
}
