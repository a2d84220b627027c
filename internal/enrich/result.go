package enrich

import (
	"context"

	"golang.org/x/time/rate"

	"cadence/internal/catalog"
)

// Value is one resolved feature value. Numeric features use Number; the mode
// feature uses Text.
type Value struct {
	Number float64
	Text   string
}

// FieldValues maps features to resolved values. Providers return only the
// fields they actually resolved; nil or empty means a miss.
type FieldValues map[catalog.Feature]Value

// Result is one probe outcome. Lyrics and LyricsStatus are set only by the
// lyrics provider, which records what it analyzed alongside the sentiment.
type Result struct {
	Values       FieldValues
	Lyrics       string
	LyricsStatus string
}

// Empty reports whether the probe produced nothing at all.
func (r Result) Empty() bool {
	return len(r.Values) == 0 && r.Lyrics == "" && r.LyricsStatus == ""
}

// Probe fetches whatever features one provider can supply for a track. The
// track is passed by value so a probe cannot mutate the snapshot being
// merged. Errors are reserved for transport failures; a clean miss is an
// empty Result or a not-found classification.
type Probe func(ctx context.Context, track catalog.Track) (Result, error)

// Provider couples a probe with its chain name, the features it can resolve,
// and an optional rate limiter for polite pacing.
type Provider struct {
	Name    string
	Fields  []catalog.Feature
	Limiter *rate.Limiter
	Probe   Probe
}

// Outcome reports one track's resolution pass.
type Outcome struct {
	Track     *catalog.Track
	FromCache []catalog.Feature
	Resolved  map[catalog.Feature]string
	Missing   []catalog.Feature
	Probes    int
}

// Complete reports whether every feature carries a value after the pass.
func (o *Outcome) Complete() bool {
	return o != nil && len(o.Missing) == 0
}
