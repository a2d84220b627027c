// Package featurecache provides a local cache that maps normalized track keys
// to previously resolved musical features.
//
// The cache lets repeated runs skip provider lookups for tracks that were
// already enriched, including tracks that were later removed from the catalog
// and re-imported. A hit supplies tempo, mode, lyrics, and lyric sentiment
// together with the source labels recorded when the values were first
// resolved.
//
// # Storage
//
// The cache is stored as a JSON file at a configurable path (default:
// ~/.local/share/cadence/feature_cache.json). The JSON format is
// human-readable and easy to inspect or edit manually.
//
// Writes are batched: Put updates memory and the file is persisted once a
// configurable number of entries have accumulated, plus a final Flush at the
// end of a run. Non-finite numbers are dropped on both load and save so a
// damaged file never feeds NaN into the catalog.
//
// CLI commands for inspection and management:
//
//	cadence cache list             # List cached feature sets
//	cadence cache stats            # Entry count and file location
//	cadence cache remove <key>     # Remove one entry
//	cadence cache clear            # Remove all entries
package featurecache
