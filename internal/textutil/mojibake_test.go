package textutil

import "testing"

func TestFixMojibakeRepairsLatin1RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"accented name", "JosÃ© GonzÃ¡lez", "José González"},
		{"a grave", "BeyoncÃ©", "Beyoncé"},
		{"smart quote dropped", "donâ€™t", "dont"},
		{"clean ascii untouched", "Johnny Cash", "Johnny Cash"},
		{"clean unicode untouched", "Sigur Rós", "Sigur Rós"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FixMojibake(tt.input); got != tt.want {
				t.Fatalf("FixMojibake(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFixMojibakeIdempotentOnRepairedText(t *testing.T) {
	repaired := FixMojibake("JosÃ©")
	if again := FixMojibake(repaired); again != repaired {
		t.Fatalf("second pass changed text: %q then %q", repaired, again)
	}
}
