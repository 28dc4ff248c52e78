package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLineExclusions are matched against the comment-free source line of a
// candidate and the line its pattern starts on.
var DefaultLineExclusions = []string{
	`\b(?:print|debugPrint|log|debugLog)\s*\(`,
	`\b(?:logger|_logger|log|Log|developer)\.\w+\s*\(`,
	`\bthrow\s+`,
	`\bassert\s*\(`,
	`^\s*(?:import|export|part|library)\b`,
	`^\s*@\w+`,
	`\bRegExp\s*\(`,
}

var (
	urlRe      = regexp.MustCompile(`(?i)^(?:[a-z][a-z0-9+.-]*://|mailto:|package:|dart:|assets?/|www\.)`)
	pathRe     = regexp.MustCompile(`^[\w.\-]*[/\\][\w.\-/\\]*$`)
	fileRe     = regexp.MustCompile(`(?i)^[\w\-]+\.(?:dart|png|jpe?g|gif|svg|webp|json|ya?ml|arb|txt|ttf|otf|mp3|mp4|html?|css|js)$`)
	hashRe     = regexp.MustCompile(`^[A-Za-z0-9+/=_\-]{24,}$`)
	hexRe      = regexp.MustCompile(`^(?:0x)?[0-9A-Fa-f]{12,}$`)
	interpRe   = regexp.MustCompile(`(?:^|[^\\])\$`)
	spaceRunRe = regexp.MustCompile(`\s+`)
)

// Filter rejects literals that are not translatable UI copy.
type Filter struct {
	lines     []*regexp.Regexp
	maxLength int
}

// NewFilter compiles the line exclusions plus a user denylist.
func NewFilter(denylist []string, maxLength int) (*Filter, error) {
	f := &Filter{maxLength: maxLength}

	for _, expr := range append(append([]string{}, DefaultLineExclusions...), denylist...) {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", expr, err)
		}

		f.lines = append(f.lines, re)
	}

	return f, nil
}

// ExcludedLine reports whether a comment-free source line is excluded.
func (f *Filter) ExcludedLine(line string) bool {
	for _, re := range f.lines {
		if re.MatchString(line) {
			return true
		}
	}

	return false
}

// ExcludedText reports whether a normalized literal looks like a URL, a path,
// a file name, or a hash/token rather than prose.
func (f *Filter) ExcludedText(text string) bool {
	if f.maxLength > 0 && utf8.RuneCountInString(text) > f.maxLength {
		return true
	}

	return urlRe.MatchString(text) ||
		pathRe.MatchString(text) ||
		fileRe.MatchString(text) ||
		hashRe.MatchString(text) ||
		hexRe.MatchString(text)
}

// Interpolated reports whether a raw literal uses string interpolation.
func Interpolated(raw string) bool {
	return interpRe.MatchString(raw)
}

// Unescape resolves the escape sequences of a quoted literal body.
func Unescape(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}

	var b strings.Builder

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			b.WriteByte(c)
			continue
		}

		i++

		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			if r, n := parseUnicodeEscape(raw[i+1:]); n > 0 {
				b.WriteRune(r)
				i += n
				continue
			}
			b.WriteString(`\u`)
		default:
			b.WriteByte(raw[i])
		}
	}

	return b.String()
}

func parseUnicodeEscape(s string) (rune, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0
		}

		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil {
			return 0, 0
		}

		return rune(v), end + 1
	}

	if len(s) < 4 {
		return 0, 0
	}

	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0
	}

	return rune(v), 4
}

// Normalize collapses whitespace and strips wrapping punctuation.
// "  「删除全部」 " -> "删除全部"; "Are you  sure?" -> "Are you sure".
func Normalize(value string) string {
	s := strings.TrimSpace(spaceRunRe.ReplaceAllString(value, " "))

	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// Display collapses whitespace but keeps punctuation. It is the form used for
// validation of word shapes and for committing new catalog text.
func Display(value string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(value, " "))
}
