package scoring

import (
	"math"
	"strings"
)

// RangeDecay maps a value onto [0, 1]: 1 inside the ideal band, linear decay
// toward 0 at the hard bounds, 0 at or beyond them.
func RangeDecay(x, idealMin, idealMax, hardMin, hardMax float64) float64 {
	switch {
	case x >= idealMin && x <= idealMax:
		return 1.0
	case x < idealMin:
		if x <= hardMin {
			return 0.0
		}
		return (x - hardMin) / (idealMin - hardMin)
	case x > idealMax:
		if x >= hardMax {
			return 0.0
		}
		return 1 - (x-idealMax)/(hardMax-idealMax)
	}
	return 0.0
}

// TempoScore scores a tempo reading against two ideal bands, the relaxation
// band around 60-80 BPM and the steady-walking band around 100-120 BPM. A
// reading between the bands takes the higher of the two decays.
func TempoScore(bpm *float64) (float64, bool) {
	if !definedNumber(bpm) {
		return 0, false
	}
	low := RangeDecay(*bpm, 60, 80, 50, 130)
	high := RangeDecay(*bpm, 100, 120, 50, 130)
	return math.Max(low, high), true
}

var modeScores = map[string]float64{
	"major":      1.0,
	"mixolydian": 0.8,
	"dorian":     0.5,
	"minor":      0.4,
}

// Any recognizable mode label still carries a little therapeutic signal.
const unmappedModeScore = 0.3

// ModeScore scores a mode label. Unmapped labels score 0.3 rather than
// erroring; only a missing label is undefined.
func ModeScore(mode *string) (float64, bool) {
	if mode == nil {
		return 0, false
	}
	label := strings.ToLower(strings.TrimSpace(*mode))
	if label == "" {
		return 0, false
	}
	if score, ok := modeScores[label]; ok {
		return score, true
	}
	return unmappedModeScore, true
}

// ValenceScore scores lyric valence, ideal in the gently positive 0.2-0.6 band.
func ValenceScore(v *float64) (float64, bool) {
	if !definedNumber(v) {
		return 0, false
	}
	return RangeDecay(*v, 0.2, 0.6, -0.5, 1.0), true
}

// ArousalScore scores lyric arousal, ideal in the calm 0.2-0.6 band.
func ArousalScore(a *float64) (float64, bool) {
	if !definedNumber(a) {
		return 0, false
	}
	return RangeDecay(*a, 0.2, 0.6, -0.3, 1.0), true
}

func definedNumber(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
