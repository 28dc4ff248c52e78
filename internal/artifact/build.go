package artifact

import (
	"maps"
	"math"
	"time"

	"arbsweep/internal/resolve"
)

// DefaultCategory holds entries whose candidate has no context tag.
const DefaultCategory = "text"

// BuildOptions configures Build.
type BuildOptions struct {
	Root    string
	Locales []string
	// AutoApproveReuse pre-approves exact (confidence 1) reuse entries.
	AutoApproveReuse bool
	Now              func() time.Time
}

// Build groups resolutions into a mapping file by context tag and action.
func Build(resolutions []resolve.Resolution, opts BuildOptions) *File {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	f := &File{
		Version:     Version,
		GeneratedAt: opts.Now().UTC().Truncate(time.Second),
		Root:        opts.Root,
		Locales:     append([]string(nil), opts.Locales...),
		Categories:  map[string]*Category{},
	}

	for _, r := range resolutions {
		name := r.Candidate.ContextTag
		if name == "" {
			name = DefaultCategory
		}

		cat := f.Categories[name]
		if cat == nil {
			cat = &Category{}
			f.Categories[name] = cat
		}

		e := entryOf(r)

		switch r.Action {
		case resolve.Reuse:
			cat.Reuse = append(cat.Reuse, e)
		case resolve.Create:
			cat.Create = append(cat.Create, e)
		}
	}

	if opts.AutoApproveReuse {
		f.Approve(ExactReuse)
	}

	return f
}

// ExactReuse selects reuse entries whose text matched the catalog exactly.
func ExactReuse(t Tagged) bool {
	return t.Action == resolve.Reuse && t.Confidence >= 1
}

func entryOf(r resolve.Resolution) *Entry {
	c := r.Candidate

	e := &Entry{
		Key:              r.Key,
		SourceText:       c.Value(),
		Literal:          c.Literal(),
		SourceLocale:     c.Locale,
		TargetText:       maps.Clone(r.Proposed),
		NeedsTranslation: append([]string(nil), r.NeedsTranslation...),
		File:             c.File,
		Line:             c.Line,
		Column:           c.Column,
		Confidence:       math.Round(r.Confidence*1000) / 1000,
		Pattern:          c.PatternID,
	}

	if c.Multiline {
		e.PatternLine = c.StartLine
	}

	if r.Hint != nil {
		e.ReviewHint = &ReviewHint{Key: r.Hint.Key, Text: r.Hint.Text, Score: math.Round(r.Hint.Score*1000) / 1000}
	}

	return e
}
