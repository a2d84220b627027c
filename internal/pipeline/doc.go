// Package pipeline drives catalog tracks through the enrich, annotate, and
// score stages.
//
// The runner claims tracks by status, moves each through its stage's
// processing and done statuses, and persists after every transition so an
// interrupted run can resume where it stopped. Per-track failures mark the
// track failed or review and the run continues; only context cancellation or
// a store failure aborts a pass. A lock file serializes whole runs so two
// invocations cannot claim from the same catalog at once.
//
// Processing is sequential. Provider rate limits dominate wall time, so
// concurrency would only complicate pacing; the store and cache are both
// internally synchronized should that change.
package pipeline
