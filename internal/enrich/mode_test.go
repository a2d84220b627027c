package enrich

import "testing"

func TestModeFromScale(t *testing.T) {
	tests := []struct {
		scale string
		want  string
		ok    bool
	}{
		{"major", "Major", true},
		{"minor", "Minor", true},
		{"Major", "Major", true},
		{"  MINOR  ", "Minor", true},
		{"aeolian", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, ok := ModeFromScale(tc.scale)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ModeFromScale(%q) = (%q, %v), want (%q, %v)", tc.scale, got, ok, tc.want, tc.ok)
		}
	}
}

func TestModeFromKeyString(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"C major", "Major", true},
		{"A Minor", "Minor", true},
		{"Bb Major", "Major", true},
		{"G#m", "Minor", true},
		{"Em", "Minor", true},
		{"f# minor", "Minor", true},
		{"C", "", false},
		{"D#", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tc := range tests {
		got, ok := ModeFromKeyString(tc.key)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ModeFromKeyString(%q) = (%q, %v), want (%q, %v)", tc.key, got, ok, tc.want, tc.ok)
		}
	}
}
