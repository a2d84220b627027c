// Package sources provides shared plumbing for the feature-source HTTP
// clients: typed status errors that unwrap to the services sentinels, and
// Retry-After extraction so the enrichment executor can honor server pacing
// hints. The per-provider clients live in subpackages.
package sources
