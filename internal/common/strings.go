package common

import "strings"

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// Plural returns word with an "s" appended unless n is exactly one.
func Plural(n int, word string) string {
	if n == 1 {
		return word
	}

	return word + "s"
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}

	if n == 1 {
		return string(r[:1])
	}

	return strings.TrimSpace(string(r[:n-1])) + "…"
}
