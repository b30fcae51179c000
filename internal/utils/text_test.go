package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already clean", input: "great game", expected: "great game"},
		{name: "surrounding whitespace", input: "  \n\tgreat game \n", expected: "great game"},
		{name: "nul bytes", input: "gr\x00eat", expected: "great"},
		{name: "invalid utf8", input: "caf\xc3 bar", expected: "caf bar"},
		{name: "line endings", input: "one\r\ntwo\rthree", expected: "one\ntwo\nthree"},
		{name: "multibyte kept", input: "très bien 🎮", expected: "très bien 🎮"},
		{name: "only whitespace", input: " \r\n ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}
