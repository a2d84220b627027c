package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("hello world"), 0},
		{"b nil", NewFingerprint("hello world"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	text := "Blue Monday New Order"
	a := NewFingerprint(text)
	b := NewFingerprint(text)

	got := CosineSimilarity(a, b)
	if got != 1.0 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	a := NewFingerprint("heroes david bowie")
	b := NewFingerprint("creep radiohead")

	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("CosineSimilarity(disjoint) = %v, want 0", got)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	a := NewFingerprint("hurt johnny cash")
	b := NewFingerprint("hurt nine inch nails")

	got := CosineSimilarity(a, b)
	if got <= 0 || got >= 1 {
		t.Errorf("CosineSimilarity(partial) = %v, want value in (0, 1)", got)
	}
	if math.IsNaN(got) {
		t.Error("CosineSimilarity returned NaN")
	}
}

func TestTokenizeKeepsShortMusicTokens(t *testing.T) {
	tokens := Tokenize("U2 - One (Remastered)")
	want := map[string]bool{"u2": true, "one": true, "remastered": true}
	if len(tokens) != len(want) {
		t.Fatalf("unexpected tokens: %v", tokens)
	}
	for _, token := range tokens {
		if !want[token] {
			t.Fatalf("unexpected token %q in %v", token, tokens)
		}
	}

	if got := Tokenize("x - y"); len(got) != 0 {
		t.Fatalf("expected single-character tokens filtered, got %v", got)
	}
}

func TestFingerprintEmptyText(t *testing.T) {
	if fp := NewFingerprint(""); fp != nil {
		t.Fatalf("expected nil fingerprint for empty text, got %d tokens", fp.TokenCount())
	}
}
