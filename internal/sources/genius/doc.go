// Package genius implements a client for the Genius song search API plus a
// minimal lyrics extraction from song pages. Search hits are verified against
// the requested title and artist with a token-overlap check before their
// lyrics URL is trusted, since Genius freely returns covers, tracklists, and
// unrelated pages for loose queries.
package genius
