package enrich

import "strings"

// ModeFromScale maps a provider scale label ("major"/"minor") onto the
// catalog's mode vocabulary.
func ModeFromScale(scale string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(scale)) {
	case "major":
		return "Major", true
	case "minor":
		return "Minor", true
	}
	return "", false
}

// ModeFromKeyString extracts a mode from key strings such as "C major",
// "A Minor", or "G#m". Bare key names without a scale marker stay unknown.
func ModeFromKeyString(key string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(key))
	if s == "" {
		return "", false
	}
	if strings.Contains(s, "major") {
		return "Major", true
	}
	if strings.Contains(s, "minor") || strings.HasSuffix(s, "m") {
		return "Minor", true
	}
	return "", false
}
