package catalog_test

import (
	"reflect"
	"testing"

	"cadence/internal/catalog"
)

func TestParseStatus(t *testing.T) {
	status, ok := catalog.ParseStatus("  Enriched ")
	if !ok || status != catalog.StatusEnriched {
		t.Fatalf("expected enriched, got %q ok=%v", status, ok)
	}
	if _, ok := catalog.ParseStatus("ripping"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, ok := catalog.ParseStatus(""); ok {
		t.Fatal("expected empty status to be rejected")
	}
}

func TestFeatureAccessors(t *testing.T) {
	track := &catalog.Track{}
	if got := track.MissingFeatures(); len(got) != 4 {
		t.Fatalf("expected all features missing, got %v", got)
	}

	track.SetFeatureNumber(catalog.FeatureTempo, 128, "deezer")
	track.SetFeatureText(catalog.FeatureMode, "Dorian", "acousticbrainz")

	if !track.HasFeature(catalog.FeatureTempo) || !track.HasFeature(catalog.FeatureMode) {
		t.Fatal("expected tempo and mode set")
	}
	if value, ok := track.FeatureNumber(catalog.FeatureTempo); !ok || value != 128 {
		t.Fatalf("unexpected tempo: %v ok=%v", value, ok)
	}
	if text, ok := track.FeatureText(catalog.FeatureMode); !ok || text != "Dorian" {
		t.Fatalf("unexpected mode: %q ok=%v", text, ok)
	}
	if track.FeatureSource(catalog.FeatureMode) != "acousticbrainz" {
		t.Fatalf("unexpected mode source: %q", track.FeatureSource(catalog.FeatureMode))
	}

	missing := track.MissingFeatures()
	want := []catalog.Feature{catalog.FeatureValence, catalog.FeatureArousal}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("expected %v missing, got %v", want, missing)
	}

	// Whitespace-only mode counts as absent.
	blank := "   "
	track.Mode = &blank
	if track.HasFeature(catalog.FeatureMode) {
		t.Fatal("expected blank mode to read as missing")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tempo := 90.0
	mode := "Major"
	track := &catalog.Track{Title: "Original", TempoBPM: &tempo, Mode: &mode}

	clone := track.Clone()
	*clone.TempoBPM = 150
	*clone.Mode = "Minor"
	clone.Title = "Copy"

	if *track.TempoBPM != 90 || *track.Mode != "Major" || track.Title != "Original" {
		t.Fatalf("expected original untouched, got %#v", track)
	}
}

func TestFeatureIsNumeric(t *testing.T) {
	for _, feature := range catalog.AllFeatures() {
		numeric := feature.IsNumeric()
		if feature == catalog.FeatureMode && numeric {
			t.Fatal("mode must be categorical")
		}
		if feature != catalog.FeatureMode && !numeric {
			t.Fatalf("%s must be numeric", feature)
		}
	}
}
