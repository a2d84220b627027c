package scoring

import (
	"cadence/internal/catalog"
	"cadence/internal/config"
)

// Weights holds per-feature base weights. The four weights sum to 1.
type Weights struct {
	Tempo   float64
	Mode    float64
	Valence float64
	Arousal float64
}

// DefaultWeights returns the built-in base weights.
func DefaultWeights() Weights {
	return Weights{Tempo: 0.25, Mode: 0.20, Valence: 0.25, Arousal: 0.30}
}

// Scorer computes per-feature scores, evidence-adjusted weights, and the
// composite for one track at a time.
type Scorer struct {
	base Weights
}

// NewScorer builds a scorer using the configured base-weight override when
// present, the built-in weights otherwise.
func NewScorer(cfg *config.Config) *Scorer {
	base := DefaultWeights()
	if cfg != nil && cfg.Scoring.HasWeightOverride() {
		base = Weights{
			Tempo:   cfg.Scoring.TempoWeight,
			Mode:    cfg.Scoring.ModeWeight,
			Valence: cfg.Scoring.ValenceWeight,
			Arousal: cfg.Scoring.ArousalWeight,
		}
	}
	return &Scorer{base: base}
}

// Score writes per-feature scores, renormalized weights, the composite, and
// the letter grade onto the track. Undefined feature scores are excluded from
// the composite, numerator and denominator both, so missing data dilutes
// nothing. Weight columns are always populated; they describe the evidence
// weighting whether or not the feature resolved.
func (s *Scorer) Score(track *catalog.Track) {
	tempoScore, tempoOK := TempoScore(track.TempoBPM)
	modeScore, modeOK := ModeScore(track.Mode)
	valenceScore, valenceOK := ValenceScore(track.LyricValence)
	arousalScore, arousalOK := ArousalScore(track.LyricArousal)

	effTempo := s.base.Tempo * Multiplier(EffectiveTier(track, catalog.FeatureTempo))
	effMode := s.base.Mode * Multiplier(EffectiveTier(track, catalog.FeatureMode))
	effValence := s.base.Valence * Multiplier(EffectiveTier(track, catalog.FeatureValence))
	effArousal := s.base.Arousal * Multiplier(EffectiveTier(track, catalog.FeatureArousal))

	total := effTempo + effMode + effValence + effArousal
	if total > 0 {
		effTempo /= total
		effMode /= total
		effValence /= total
		effArousal /= total
	}

	track.TempoScore = scoreOrNil(tempoScore, tempoOK)
	track.ModeScore = scoreOrNil(modeScore, modeOK)
	track.ValenceScore = scoreOrNil(valenceScore, valenceOK)
	track.ArousalScore = scoreOrNil(arousalScore, arousalOK)
	track.TempoWeight = floatPtr(effTempo)
	track.ModeWeight = floatPtr(effMode)
	track.ValenceWeight = floatPtr(effValence)
	track.ArousalWeight = floatPtr(effArousal)

	var numer, denom float64
	if tempoOK {
		numer += tempoScore * effTempo
		denom += effTempo
	}
	if modeOK {
		numer += modeScore * effMode
		denom += effMode
	}
	if valenceOK {
		numer += valenceScore * effValence
		denom += effValence
	}
	if arousalOK {
		numer += arousalScore * effArousal
		denom += effArousal
	}

	if denom > 0 {
		track.CompositeScore = floatPtr(numer / denom)
	} else {
		track.CompositeScore = nil
	}
	track.LetterGrade = Grade(track.CompositeScore)
}

func scoreOrNil(score float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return floatPtr(score)
}

func floatPtr(v float64) *float64 {
	p := v
	return &p
}
