// Package annotate asks the configured language model for advisory listening
// guidance per track: a suggested listening context and any contraindications.
//
// Annotation is best effort. A failed or malformed model response leaves the
// annotation columns empty and never fails the track; only context
// cancellation stops the stage.
package annotate
