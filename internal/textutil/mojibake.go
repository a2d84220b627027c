package textutil

import "strings"

// mojibakeMarks are byte sequences that only appear when UTF-8 text was
// decoded as Latin-1 or Windows-1252 somewhere upstream.
var mojibakeMarks = []string{"Ã", "Â", "â€™", "â€œ", "â€", "â€“", "â€”"}

// FixMojibake repairs typical UTF-8 to Latin-1 round-trip damage, but only
// when a telltale sequence is present. Clean text passes through untouched.
//
// The repair re-encodes the text as Latin-1 and decodes the bytes as UTF-8.
// Characters outside Latin-1 and bytes that no longer form valid UTF-8 are
// dropped, matching the lossy-but-deterministic behavior the catalog data
// was originally cleaned with.
func FixMojibake(s string) string {
	if s == "" {
		return s
	}
	damaged := false
	for _, mark := range mojibakeMarks {
		if strings.Contains(s, mark) {
			damaged = true
			break
		}
	}
	if !damaged {
		return s
	}

	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r <= 0xFF {
			buf = append(buf, byte(r))
		}
	}
	return strings.ToValidUTF8(string(buf), "")
}
