package dictionary

import (
	"strings"
	"unicode/utf8"
)

// Format writes entries back as one `key=description` line each.
// Descriptions are written on a single line, so parsing the output yields
// the same keys in the same order. Keys starting with '#' get a leading
// space to keep them from reading as comments.
func Format(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if strings.HasPrefix(e.Key, "#") {
			b.WriteByte(' ')
		}
		b.WriteString(e.Key)
		b.WriteByte('=')
		b.WriteString(e.Description)
		b.WriteByte('\n')
	}
	return b.String()
}

// decodeText turns raw dictionary bytes into text, replacing invalid UTF-8
// sequences with U+FFFD.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}
