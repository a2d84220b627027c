package scoring

import "math"

// GradeNA marks tracks whose composite is undefined.
const GradeNA = "N/A"

// Cutoffs are percentages checked high to low; the first one met wins.
var gradeCutoffs = []struct {
	grade string
	min   float64
}{
	{"A+", 97}, {"A", 93}, {"A-", 90},
	{"B+", 87}, {"B", 83}, {"B-", 80},
	{"C+", 77}, {"C", 73}, {"C-", 70},
	{"D", 60}, {"F", 0},
}

// Grade maps a composite score onto a letter grade. A nil or non-finite
// composite grades as N/A.
func Grade(composite *float64) string {
	if composite == nil || math.IsNaN(*composite) || math.IsInf(*composite, 0) {
		return GradeNA
	}
	pct := *composite * 100
	for _, cutoff := range gradeCutoffs {
		if pct >= cutoff.min {
			return cutoff.grade
		}
	}
	return "F"
}
