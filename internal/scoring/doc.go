// Package scoring converts resolved track features into bounded per-feature
// scores and an evidence-weighted composite with a letter grade.
//
// Every scorer is pure and total: missing or malformed input yields an
// undefined score, never an error or a panic. Undefined scores are excluded
// from the composite entirely rather than counted as zero, so a track is not
// penalized for features that could not be resolved.
package scoring
