// Package textutil provides text processing utilities for fingerprinting,
// similarity, and encoding repair.
//
// The primary use cases are:
//   - Creating token-based fingerprints from titles and artists so provider
//     search hits can be verified against the requested track
//   - Computing cosine similarity between fingerprints
//   - Repairing UTF-8 text that was mangled through a Latin-1 round trip
//
// Fingerprints use term frequency vectors normalized for efficient comparison.
// The tokenization process lowercases text, splits on non-alphanumeric
// characters, and filters single-character tokens.
package textutil
