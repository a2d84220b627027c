package lyrics

import "testing"

func TestClassifyIntegrity(t *testing.T) {
	good := "I walk the empty streets at night and call your name into the wind " +
		"while every window glows with stories I will never know again my love"
	summary := "The piece was originally written for a film and the composer said it " +
		"reflects a longing for home while the orchestra swells behind the final " +
		"chorus in every live rendition of it"

	cases := []struct {
		name   string
		lyrics string
		want   string
	}{
		{"empty", "", IntegrityMissing},
		{"whitespace only", "   \n\t  ", IntegrityMissing},
		{"instrumental tag", "Instrumental", IntegrityInstrumental},
		{"classical title", "Moonlight Sonata in C sharp minor", IntegrityInstrumental},
		{"fragment", "Hello darkness my old friend", IntegrityShort},
		{"summary prose", summary, IntegritySummary},
		{"full lyric", good, IntegrityGood},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyIntegrity(tc.lyrics); got != tc.want {
				t.Fatalf("ClassifyIntegrity(%q) = %q, want %q", tc.lyrics, got, tc.want)
			}
		})
	}
}

func TestInstrumentalWinsOverShort(t *testing.T) {
	// A two-word instrumental tag must not be reported as a fragment.
	if got := ClassifyIntegrity("no lyrics"); got != IntegrityInstrumental {
		t.Fatalf("expected instrumental, got %q", got)
	}
}

func TestAnalyzable(t *testing.T) {
	if !Analyzable(IntegrityGood) {
		t.Fatal("GOOD text must be analyzable")
	}
	for _, status := range []string{IntegrityShort, IntegritySummary, IntegrityMissing, IntegrityInstrumental, ""} {
		if Analyzable(status) {
			t.Fatalf("%q must not be analyzable", status)
		}
	}
}
