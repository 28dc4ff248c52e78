package extract

import "strings"

// lexed is a source file with comments blanked out and per-line bracket
// balance. Blanking replaces every comment byte except newlines with a space,
// so byte offsets and line numbers stay those of the original file.
type lexed struct {
	lines []string // comment-free lines, same byte lengths as the source
	delta []int    // net open brackets per line, strings and comments ignored
}

type lexState int

const (
	stCode lexState = iota
	stLineComment
	stBlockComment
	stString
)

func lex(src string) lexed {
	out := []byte(src)

	var (
		state      = stCode
		blockDepth int
		quote      byte
		triple     bool
		raw        bool
		line       int
		delta      = []int{0}
	)

	for i := 0; i < len(src); i++ {
		c := src[i]

		if c == '\n' {
			if state == stLineComment {
				state = stCode
			}

			if state == stString && !triple {
				// Unterminated single-line string; resync on the next line.
				state = stCode
			}

			line++
			delta = append(delta, 0)

			continue
		}

		switch state {
		case stCode:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = stLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = stBlockComment
				blockDepth = 1
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '\'' || c == '"':
				quote = c
				raw = i > 0 && src[i-1] == 'r' && (i < 2 || !isIdentByte(src[i-2]))
				triple = strings.HasPrefix(src[i:], strings.Repeat(string(c), 3))
				if triple {
					i += 2
				}
				state = stString
			case c == '(' || c == '[' || c == '{':
				delta[line]++
			case c == ')' || c == ']' || c == '}':
				delta[line]--
			}
		case stLineComment:
			out[i] = ' '
		case stBlockComment:
			out[i] = ' '
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				blockDepth++
				out[i+1] = ' '
				i++
			case c == '*' && i+1 < len(src) && src[i+1] == '/':
				blockDepth--
				out[i+1] = ' '
				i++
				if blockDepth == 0 {
					state = stCode
				}
			}
		case stString:
			switch {
			case c == '\\' && !raw:
				if i+1 < len(src) && src[i+1] != '\n' {
					i++
				}
			case c == quote && !triple:
				state = stCode
			case c == quote && strings.HasPrefix(src[i:], strings.Repeat(string(quote), 3)):
				i += 2
				state = stCode
			}
		}
	}

	return lexed{
		lines: strings.Split(string(out), "\n"),
		delta: delta,
	}
}

// window returns the last line index of the logical statement starting at
// line start: the first line at which the bracket balance opened from start
// closes again, capped at maxLines lines. closed is false when the cap cut
// the statement short.
func (l lexed) window(start, maxLines int) (end int, closed bool) {
	depth := 0
	limit := min(len(l.lines), start+maxLines)

	for j := start; j < limit; j++ {
		depth += l.delta[j]
		if depth <= 0 {
			return j, true
		}
	}

	return limit - 1, false
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
