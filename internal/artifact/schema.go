package artifact

import (
	"fmt"
	"sort"
	"time"

	"arbsweep/internal/resolve"
)

// Version is the schema version written by Build.
const Version = "1"

// File is the root of a mapping artifact.
type File struct {
	Version     string               `yaml:"version"`
	GeneratedAt time.Time            `yaml:"generated_at,omitempty"`
	Root        string               `yaml:"root,omitempty"`
	Locales     []string             `yaml:"locales,omitempty"`
	Categories  map[string]*Category `yaml:"categories"`
}

// Category groups the entries of one context tag by action.
type Category struct {
	Reuse  []*Entry `yaml:"reuse,omitempty"`
	Create []*Entry `yaml:"create,omitempty"`
}

// Entry is one literal occurrence and the key it should become.
type Entry struct {
	Key              string            `yaml:"key"`
	SourceText       string            `yaml:"source_text"`
	Literal          string            `yaml:"literal"`
	SourceLocale     string            `yaml:"source_locale"`
	TargetText       map[string]string `yaml:"target_text,omitempty"`
	NeedsTranslation []string          `yaml:"needs_translation,omitempty"`
	File             string            `yaml:"file"`
	Line             int               `yaml:"line"`
	Column           int               `yaml:"column"`
	Confidence       float64           `yaml:"confidence"`
	ReviewHint       *ReviewHint       `yaml:"review_hint,omitempty"`
	Pattern          string            `yaml:"pattern,omitempty"`
	// PatternLine is where the matched widget call starts when it is above
	// Line.
	PatternLine int  `yaml:"pattern_line,omitempty"`
	Approved    bool `yaml:"approved"`

	// Status is set by Validate.
	Status Status `yaml:"-"`
}

// ReviewHint is the nearest existing key offered to the reviewer.
type ReviewHint struct {
	Key   string  `yaml:"key"`
	Text  string  `yaml:"text"`
	Score float64 `yaml:"score"`
}

// Status is the state of an entry against the current source tree.
type Status int

const (
	// StatusUnchecked means Validate did not look at the source tree.
	StatusUnchecked Status = iota
	// StatusPending means the literal is still on its line.
	StatusPending
	// StatusStale means the line changed and the literal is gone.
	StatusStale
	// StatusApplied means the accessor call for the key replaced the literal.
	StatusApplied
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusUnchecked:
		return "unchecked"
	case StatusPending:
		return "pending"
	case StatusStale:
		return "stale"
	case StatusApplied:
		return "already-applied"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Location formats the entry position as file:line.
func (e *Entry) Location() string {
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

// Tagged is an entry with its category and variant.
type Tagged struct {
	Category string
	Action   resolve.Action
	*Entry
}

// Entries returns every entry ordered by file, line and column.
func (f *File) Entries() []Tagged {
	var out []Tagged

	for name, cat := range f.Categories {
		if cat == nil {
			continue
		}

		for _, e := range cat.Reuse {
			if e != nil {
				out = append(out, Tagged{Category: name, Action: resolve.Reuse, Entry: e})
			}
		}

		for _, e := range cat.Create {
			if e != nil {
				out = append(out, Tagged{Category: name, Action: resolve.Create, Entry: e})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]

		if a.File != b.File {
			return a.File < b.File
		}

		if a.Line != b.Line {
			return a.Line < b.Line
		}

		if a.Column != b.Column {
			return a.Column < b.Column
		}

		return a.Category < b.Category
	})

	return out
}

// Count returns the number of entries and how many are approved.
func (f *File) Count() (total, approved int) {
	for _, t := range f.Entries() {
		total++

		if t.Approved {
			approved++
		}
	}

	return total, approved
}

// Approve marks every entry matching pred as approved and returns how many
// changed.
func (f *File) Approve(pred func(Tagged) bool) int {
	n := 0

	for _, t := range f.Entries() {
		if !t.Approved && pred(t) {
			t.Approved = true
			n++
		}
	}

	return n
}
