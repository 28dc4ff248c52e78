package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	folder       = cases.Fold()
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeText folds a UI string to its comparison form.
// The normalization pipeline:
// 1. NFKC (full-width forms become their ASCII equivalents).
// 2. Case-fold.
// 3. Drop everything that is not a letter or a digit.
func NormalizeText(s string) string {
	s = folder.String(norm.NFKC.String(s))

	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// FoldASCII lowercases s and strips combining accents ("Élodie" -> "elodie").
func FoldASCII(s string) string {
	result, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}

	return result
}

// IsIdeograph reports whether r is written without word separators, so that
// every rune is a token of its own.
func IsIdeograph(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

// Tokens splits text into match tokens.
// Examples:
//   - "删除全部" -> ["删", "除", "全", "部"]
//   - "Save File" -> ["save", "file"]
//   - "保存 Draft2" -> ["保", "存", "draft2"]
func Tokens(s string) []string {
	s = folder.String(norm.NFKC.String(s))

	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range s {
		switch {
		case IsIdeograph(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		default:
			flush()
		}
	}

	flush()

	return tokens
}

// SharesToken reports whether a and b have at least one token in common.
func SharesToken(a, b string) bool {
	ta := Tokens(a)
	if len(ta) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		set[t] = struct{}{}
	}

	for _, t := range Tokens(b) {
		if _, ok := set[t]; ok {
			return true
		}
	}

	return false
}
