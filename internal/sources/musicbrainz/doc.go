// Package musicbrainz implements a recording-search client for the
// MusicBrainz web service. MusicBrainz requires a descriptive User-Agent and
// asks anonymous clients to stay at or under one request per second; request
// pacing is the caller's responsibility.
package musicbrainz
