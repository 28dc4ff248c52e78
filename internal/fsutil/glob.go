package fsutil

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher selects slash-separated relative paths by include and exclude globs.
// A path is selected when it matches at least one include pattern and no
// exclude pattern. "**" crosses directory boundaries, "*" does not.
type Matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewMatcher compiles include and exclude patterns.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}

	for _, p := range include {
		g, err := compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}

		m.include = append(m.include, g)
	}

	for _, p := range exclude {
		g, err := compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		m.exclude = append(m.exclude, g)
	}

	return m, nil
}

// compile also lets a leading "**/" match zero directories, so "**/*.dart"
// selects "main.dart" at the root.
func compile(pattern string) (glob.Glob, error) {
	pattern = strings.TrimPrefix(path.Clean("/"+pattern), "/")
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		pattern = "{" + rest + ",**/" + rest + "}"
	}

	return glob.Compile(pattern, '/')
}

// Match reports whether rel is selected.
func (m *Matcher) Match(rel string) bool {
	if !m.anyInclude(rel) {
		return false
	}

	return !m.Excluded(rel)
}

// Excluded reports whether rel matches an exclude pattern.
func (m *Matcher) Excluded(rel string) bool {
	for _, g := range m.exclude {
		if g.Match(rel) {
			return true
		}
	}

	return false
}

func (m *Matcher) anyInclude(rel string) bool {
	if len(m.include) == 0 {
		return true
	}

	for _, g := range m.include {
		if g.Match(rel) {
			return true
		}
	}

	return false
}
