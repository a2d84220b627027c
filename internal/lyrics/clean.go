package lyrics

import (
	"regexp"
	"strings"

	"cadence/internal/textutil"
)

var (
	contributorPattern = regexp.MustCompile(`(?is)\b\d+\s+Contributors.*$`)
	readMorePattern    = regexp.MustCompile(`(?is)Read More.*$`)
	pagePattern        = regexp.MustCompile(`(?i)Page \d+(?:\s+Page \d+)*`)
)

// Clean strips scraper artifacts from raw lyric text. Contributor headers and
// "Read More" teasers mark the start of boilerplate that runs to the end of
// the capture, so everything from the marker on is dropped. Page markers are
// removed in place, and double-encoded text is repaired when telltales show.
func Clean(text string) string {
	text = contributorPattern.ReplaceAllString(text, "")
	text = readMorePattern.ReplaceAllString(text, "")
	text = pagePattern.ReplaceAllString(text, "")
	text = textutil.FixMojibake(text)
	return strings.TrimSpace(text)
}
