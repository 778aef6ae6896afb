package util

import "testing"

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{name: "short string untouched", input: "hello", limit: 10, expected: "hello"},
		{name: "exact limit untouched", input: "hello", limit: 5, expected: "hello"},
		{name: "truncated with ellipsis", input: "hello world", limit: 5, expected: "hello..."},
		{name: "surrounding whitespace trimmed", input: "  hi  ", limit: 10, expected: "hi"},
		{name: "zero limit yields empty", input: "hello", limit: 0, expected: ""},
		{name: "multibyte runes counted as runes", input: "привет мир", limit: 6, expected: "привет..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateForLog(tc.input, tc.limit); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
