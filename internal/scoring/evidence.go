package scoring

import (
	"strings"

	"cadence/internal/catalog"
)

// Evidence tier multipliers. Strong evidence classes boost a feature's
// weight, weak ones shrink it. Unrecognized labels keep multiplier 1.0
// rather than failing the record.
var evidenceMultipliers = map[string]float64{
	"rct":           1.15,
	"meta":          1.10,
	"systematic":    1.10,
	"observational": 0.95,
	"clinical":      0.95,
	"theoretical":   0.85,
	"mechanistic":   0.85,
	"anecdotal":     0.75,
	"indirect":      0.75,
}

// Per-feature default tiers applied when a record carries no tier for a
// feature. A blank tier and an absent tier are indistinguishable on purpose;
// both take the default.
var defaultTiers = map[catalog.Feature]string{
	catalog.FeatureTempo:   "meta",
	catalog.FeatureMode:    "theoretical",
	catalog.FeatureValence: "observational",
	catalog.FeatureArousal: "observational",
}

// Multiplier returns the weight multiplier for an evidence tier label.
func Multiplier(tier string) float64 {
	if m, ok := evidenceMultipliers[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return m
	}
	return 1.0
}

// DefaultTier returns the tier assumed for a feature when none is recorded.
func DefaultTier(feature catalog.Feature) string {
	return defaultTiers[feature]
}

// EffectiveTier returns the tier used to weight a feature: the track's
// recorded tier when present, the feature's default otherwise.
func EffectiveTier(track *catalog.Track, feature catalog.Feature) string {
	if tier := strings.TrimSpace(track.FeatureEvidence(feature)); tier != "" {
		return tier
	}
	return DefaultTier(feature)
}
