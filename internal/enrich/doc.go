// Package enrich resolves missing track features by walking per-feature
// provider chains. The executor consults the resolution cache first, probes
// providers in configured order with retry and pacing, merges multi-field
// responses into a fresh track snapshot, and writes resolved scalars back to
// the cache. Present values are never overwritten; a provider failure
// degrades to a miss and the chain moves on.
package enrich
