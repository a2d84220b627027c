// Package trackkey builds the normalized identity key used to match a track
// across the catalog, the feature cache, and external providers.
//
// Two spellings of the same song ("Hurt (Live)" by "Johnny Cash" and
// "hurt - Remastered 2010" by "JOHNNY  CASH") normalize to one key, so a value
// resolved for either spelling serves both.
package trackkey

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Separator joins the title and artist halves of a key.
const Separator = "|||"

var (
	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)`)
	qualifierPattern     = regexp.MustCompile(`(?i)\s*-\s*(remaster(ed)?|live|acoustic|radio edit|mono|stereo|demo|single version).*$`)
	whitespacePattern    = regexp.MustCompile(`\s+`)

	folder = cases.Fold()
)

// Normalize returns the canonical cache key for a title and artist pair.
// Parenthetical qualifiers and trailing dash qualifiers are stripped from the
// title, whitespace is collapsed, and both halves are casefolded. The result
// is deterministic for any input, including empty strings.
func Normalize(title, artist string) string {
	t := parentheticalPattern.ReplaceAllString(title, "")
	t = qualifierPattern.ReplaceAllString(t, "")
	t = folder.String(strings.TrimSpace(whitespacePattern.ReplaceAllString(t, " ")))
	a := folder.String(strings.TrimSpace(whitespacePattern.ReplaceAllString(artist, " ")))
	return t + Separator + a
}

// Components splits a key back into its title and artist halves for
// diagnostic output. ok is false when the value is not a well-formed key.
func Components(key string) (title, artist string, ok bool) {
	parts := strings.SplitN(key, Separator, 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
