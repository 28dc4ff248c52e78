package extract

import (
	"fmt"
	"sort"
)

// Candidate is one hardcoded literal occurrence found in a source file.
type Candidate struct {
	// File is the slash-separated path relative to the scan root.
	File string
	// Line is the 1-based line holding the opening quote.
	Line int
	// Column is the byte offset of the opening quote within Line.
	Column int
	// RawText is the literal body exactly as written between the quotes.
	RawText string
	// Text is the normalized form used for matching.
	Text string
	// Quote is the quote character, ' or ".
	Quote string

	ContextTag string
	PatternID  string
	// Locale is the locale of the script group that accepted the literal.
	Locale string
	// Multiline is set when the literal sits on a later line than the code
	// that identified it.
	Multiline bool
	// StartLine is the 1-based line where the matched pattern begins.
	StartLine int
}

// Literal returns the literal with its quotes, as it appears in source.
func (c Candidate) Literal() string {
	return c.Quote + c.RawText + c.Quote
}

// Value returns the string value of the literal with escapes resolved.
func (c Candidate) Value() string {
	return Unescape(c.RawText)
}

// Position formats the candidate location as file:line:column.
func (c Candidate) Position() string {
	return fmt.Sprintf("%s:%d:%d", c.File, c.Line, c.Column+1)
}

// Less orders candidates by file, line and column.
func Less(a, b Candidate) bool {
	if a.File != b.File {
		return a.File < b.File
	}

	if a.Line != b.Line {
		return a.Line < b.Line
	}

	return a.Column < b.Column
}

// Sort sorts candidates in scan order.
func Sort(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool { return Less(cands[i], cands[j]) })
}
