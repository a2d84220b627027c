package lyrics

import "testing"

func TestCleanStripsContributorHeader(t *testing.T) {
	raw := "Opening line of the song\n5 Contributors\nTranslations\nRomanization\nmore boilerplate"
	if got := Clean(raw); got != "Opening line of the song" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanStripsReadMoreTeaser(t *testing.T) {
	raw := "First verse here\nRead More about this track on the site\nanything after"
	if got := Clean(raw); got != "First verse here" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanRemovesPageMarkers(t *testing.T) {
	raw := "Verse one Page 1 Page 2 verse two"
	if got := Clean(raw); got != "Verse one  verse two" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanTrimsWhitespace(t *testing.T) {
	if got := Clean("  \n only the words \n  "); got != "only the words" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
	if got := Clean(""); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestCleanRepairsMojibake(t *testing.T) {
	if got := Clean("donâ€™t look back"); got != "dont look back" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestCleanKeepsOrdinaryLyrics(t *testing.T) {
	raw := "I read your letter twice\nand turned another page of my own story"
	if got := Clean(raw); got != raw {
		t.Fatalf("expected lyric text untouched, got %q", got)
	}
}
