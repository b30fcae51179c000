package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanText prepares user supplied text for storage. NUL bytes and invalid
// UTF-8 are dropped, since text columns reject them, line endings become
// "\n" and surrounding whitespace is trimmed.
func CleanText(input string) string {
	if strings.Contains(input, "\x00") || !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
		input = strings.ReplaceAll(input, "\x00", "")
	}

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	return strings.TrimSpace(input)
}
