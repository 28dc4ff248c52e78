package artifact

import (
	"fmt"
	"maps"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"arbsweep/internal/diagnostic"
	"arbsweep/internal/resolve"
)

// DefaultAccessor is the expression a literal is replaced with, before ".key".
const DefaultAccessor = "S.of(context)"

var keyRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Catalog is the part of the string catalog validation reads.
type Catalog interface {
	Has(key string) bool
	Texts(key string) map[string]string
	Locales() []string
}

// Context supplies what validation checks entries against. A nil Catalog
// skips catalog checks; a nil Fs skips the source checks.
type Context struct {
	Catalog  Catalog
	Fs       afero.Fs
	Root     string
	Accessor string
	// ImportLine is the import apply injects. It tells an import-shifted
	// accessor call from an unrelated one.
	ImportLine string
}

// Validate checks f and records each entry's Status. Stale and
// already-applied entries are reported as warnings and infos; everything
// else that would break the apply step is an error.
func Validate(f *File, ctx Context) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("artifact_is_nil", "mapping artifact is nil", "", "")
		return res
	}

	if f.Version != Version {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported version %q (want %q)", f.Version, Version), "", "")
		return res
	}

	if ctx.Accessor == "" {
		ctx.Accessor = DefaultAccessor
	}

	if ctx.ImportLine == "" {
		ctx.ImportLine = DefaultImportLine
	}

	locales := f.Locales
	if ctx.Catalog != nil {
		locales = ctx.Catalog.Locales()
	}

	entries := f.Entries()

	for _, t := range entries {
		validateEntry(res, ctx, locales, t)
	}

	validateKeys(res, entries)
	validatePositions(res, entries)

	if ctx.Fs != nil {
		checkSources(res, ctx, entries)
	}

	return res
}

func validateEntry(res *diagnostic.Diagnostics, ctx Context, locales []string, t Tagged) {
	loc := diagnostic.Loc(t.File, t.Line)

	switch {
	case t.Key == "":
		res.AddError("missing_key", "entry has no key", loc, "")
		return
	case !keyRe.MatchString(t.Key):
		res.AddError("invalid_key", fmt.Sprintf("key %q is not a valid identifier", t.Key), loc, t.Key)
	}

	if t.File == "" || t.Line < 1 || t.Column < 0 {
		res.AddError("missing_position", "entry needs file, line >= 1 and column >= 0", loc, t.Key)
	}

	if len(t.Literal) < 2 || !strings.ContainsAny(t.Literal[:1], `'"`) || t.Literal[len(t.Literal)-1] != t.Literal[0] {
		res.AddError("invalid_literal", fmt.Sprintf("literal %q is not a quoted string", t.Literal), loc, t.Key)
	}

	switch t.Action {
	case resolve.Reuse:
		if ctx.Catalog != nil && !ctx.Catalog.Has(t.Key) {
			res.AddError("unknown_key", fmt.Sprintf("reuse key %q is not in the catalog", t.Key), loc, t.Key)
		}

	case resolve.Create:
		for _, l := range locales {
			if text, ok := t.TargetText[l]; !ok || text == "" {
				res.AddError("missing_translation", fmt.Sprintf("create entry has no %s text", l), loc, t.Key)
			}
		}

		if ctx.Catalog != nil && ctx.Catalog.Has(t.Key) && !sameTexts(ctx.Catalog.Texts(t.Key), t.TargetText, locales) {
			res.AddWarning("key_exists",
				fmt.Sprintf("key %q already exists with other text; a suffixed key will be used", t.Key), loc, t.Key)
		}
	}
}

// validateKeys rejects one key standing for two different things.
func validateKeys(res *diagnostic.Diagnostics, entries []Tagged) {
	first := map[string]Tagged{}

	for _, t := range entries {
		if t.Key == "" {
			continue
		}

		prev, seen := first[t.Key]
		if !seen {
			first[t.Key] = t
			continue
		}

		switch {
		case prev.Action != t.Action:
			res.AddError("key_conflict",
				fmt.Sprintf("key %q is both %s (%s) and %s", t.Key, prev.Action, prev.Location(), t.Action),
				t.Location(), t.Key)
		case t.Action == resolve.Create && !maps.Equal(t.TargetText, prev.TargetText):
			res.AddError("key_conflict",
				fmt.Sprintf("key %q has different texts here and at %s", t.Key, prev.Location()),
				t.Location(), t.Key)
		}
	}
}

func validatePositions(res *diagnostic.Diagnostics, entries []Tagged) {
	type pos struct {
		file         string
		line, column int
	}

	seen := map[pos]struct{}{}

	for _, t := range entries {
		p := pos{t.File, t.Line, t.Column}
		if _, dup := seen[p]; dup {
			res.AddError("duplicate_location",
				fmt.Sprintf("more than one entry for %s column %d", t.Location(), t.Column), t.Location(), t.Key)

			continue
		}

		seen[p] = struct{}{}
	}
}

// checkSources sets each entry's Status from the current source line.
func checkSources(res *diagnostic.Diagnostics, ctx Context, entries []Tagged) {
	lines := map[string][]string{}

	for _, t := range entries {
		if t.File == "" || t.Line < 1 {
			continue
		}

		src, ok := lines[t.File]
		if !ok {
			data, err := afero.ReadFile(ctx.Fs, filepath.Join(ctx.Root, filepath.FromSlash(t.File)))
			if err == nil {
				src = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
			}

			lines[t.File] = src
		}

		t.Status = LineStatus(src, t.Entry, ctx.Accessor, ctx.ImportLine)

		switch t.Status {
		case StatusStale:
			res.AddWarning("stale_reference", fmt.Sprintf("line no longer contains %s", t.Literal), t.Location(), t.Key)
		case StatusApplied:
			res.AddInfo("already_applied", "accessor call already present", t.Location(), t.Key)
		}
	}
}

// LineStatus compares an entry with the current lines of its file.
func LineStatus(lines []string, e *Entry, accessor, importLine string) Status {
	if e.Line < 1 || e.Line > len(lines) {
		return StatusStale
	}

	if strings.Contains(lines[e.Line-1], e.Literal) {
		return StatusPending
	}

	if AppliedAt(lines, e.Line-1, accessor, importLine, e.Key) {
		return StatusApplied
	}

	return StatusStale
}

// AppliedAt reports whether the accessor call for key is on line index i.
// When importLine sits at or above i, the injected import has moved the
// line down by one and index i+1 is checked instead.
func AppliedAt(lines []string, i int, accessor, importLine, key string) bool {
	if i < 0 || i >= len(lines) {
		return false
	}

	if ContainsAccessor(lines[i], accessor, key) {
		return true
	}

	imp := ImportIndex(lines, importLine)

	return imp >= 0 && imp <= i && i+1 < len(lines) && ContainsAccessor(lines[i+1], accessor, key)
}

// ContainsAccessor reports whether line holds accessor.key as a whole word.
func ContainsAccessor(line, accessor, key string) bool {
	call := accessor + "." + key

	for i := 0; ; {
		j := strings.Index(line[i:], call)
		if j < 0 {
			return false
		}

		end := i + j + len(call)
		if end == len(line) || !isIdent(line[end]) {
			return true
		}

		i = end
	}
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func sameTexts(a, b map[string]string, locales []string) bool {
	for _, l := range locales {
		if a[l] != b[l] {
			return false
		}
	}

	return true
}
