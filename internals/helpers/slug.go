package helper

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// SanitizeFilename keeps letters (any script), digits, space, '-', '_' and '.'.
// Path separators and control characters are dropped. Empty input returns "".
func SanitizeFilename(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 120
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(strings.Join(strings.Fields(b.String()), " "), ". ")
	if utf8.RuneCountInString(out) > maxLen {
		out = strings.TrimSpace(string([]rune(out)[:maxLen]))
	}
	return out
}

// SafeExt returns the lower-cased extension if it is short and alphanumeric.
func SafeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
