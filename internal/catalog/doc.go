// Package catalog persists the song catalog in SQLite and models track
// lifecycle through the enrichment and scoring pipeline.
//
// Tracks enter as pending after CSV import, move through enriching, annotating,
// and scoring stages, and finish scored (or failed/review when a stage cannot
// complete). The store serializes writes with busy retries so a flush or CLI
// query never aborts a run. CSV import performs the one-time type coercion for
// feature columns; everything downstream works with typed optional values.
package catalog
