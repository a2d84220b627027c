// Package acousticbrainz implements a client for the AcousticBrainz
// high-level API, which serves crowd-computed tonal and rhythm descriptors
// keyed by MusicBrainz recording ID. The project stopped accepting new
// submissions, so missing documents are common and surface as not-found.
package acousticbrainz
