package apply

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"arbsweep/internal/artifact"
	"arbsweep/internal/backup"
	"arbsweep/internal/catalog"
	"arbsweep/internal/fsutil"
	"arbsweep/internal/resolve"
)

// Defaults for Options.
const (
	DefaultImportLine        = artifact.DefaultImportLine
	DefaultMaxSuffixAttempts = 5
)

var constRe = regexp.MustCompile(`\bconst\s+`)

// Catalog is the part of the string catalog the applier reads and extends.
type Catalog interface {
	Has(key string) bool
	Texts(key string) map[string]string
	Locales() []string
	Commit(key string, textByLocale map[string]string) error
	Persist() error
}

// Options configures an Applier.
type Options struct {
	// Root is the directory artifact file paths are relative to.
	Root              string
	Accessor          string
	ImportLine        string
	MaxSuffixAttempts int
	DryRun            bool
	// Backups receives a snapshot of every file before it is rewritten.
	Backups *backup.Store
	Logger  *zap.Logger
	// OnFile is called after each file has been processed.
	OnFile func(path string)
}

// Applier rewrites source files and extends the catalog.
type Applier struct {
	fs      afero.Fs
	catalog Catalog
	opts    Options
	logger  *zap.Logger

	// keys maps an artifact key to the key actually used for it.
	keys map[string]string
	// pending holds planned keys that are not in the catalog.
	pending map[string]struct{}
	added   map[string]struct{}
}

// New returns an Applier over fs.
func New(fs afero.Fs, cat Catalog, opts Options) *Applier {
	if opts.Root == "" {
		opts.Root = "."
	}

	if opts.Accessor == "" {
		opts.Accessor = artifact.DefaultAccessor
	}

	if opts.ImportLine == "" {
		opts.ImportLine = DefaultImportLine
	}

	if opts.MaxSuffixAttempts <= 0 {
		opts.MaxSuffixAttempts = DefaultMaxSuffixAttempts
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Applier{
		fs:      fs,
		catalog: cat,
		opts:    opts,
		logger:  opts.Logger,
	}
}

// ApplyApproved applies the approved entries of f. The artifact should have
// been validated against the current source tree first so that stale entries
// are reported without touching their files. The returned error is set only
// when the run had to stop; per-entry and per-file failures are in the
// summary.
func (a *Applier) ApplyApproved(ctx context.Context, f *artifact.File) (*Summary, error) {
	a.keys = map[string]string{}
	a.pending = map[string]struct{}{}
	a.added = map[string]struct{}{}

	sum := &Summary{DryRun: a.opts.DryRun}

	for _, e := range f.Stale() {
		sum.record(Outcome{
			Entry: e,
			Kind:  OutcomeStale,
			Key:   e.Key,
			Err:   &StaleReferenceError{File: e.File, Line: e.Line, Literal: e.Literal},
		})
	}

	byFile := lo.GroupBy(f.Changes(), func(c artifact.Change) string { return c.Target().File })
	files := lo.Keys(byFile)
	sort.Strings(files)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			a.skip(files[i:], byFile, sum)
			return sum, err
		}

		res, err := a.applyFile(file, byFile[file], sum)
		sum.Files = append(sum.Files, res)

		if a.opts.OnFile != nil {
			a.opts.OnFile(file)
		}

		if err != nil {
			a.skip(files[i+1:], byFile, sum)
			return sum, err
		}
	}

	return sum, nil
}

// skip records the files a stopped run never reached.
func (a *Applier) skip(files []string, byFile map[string][]artifact.Change, sum *Summary) {
	for _, file := range files {
		sum.Files = append(sum.Files, FileResult{Path: file, Err: ErrNotAttempted})

		for _, c := range byFile[file] {
			sum.record(Outcome{Entry: c.Target(), Kind: OutcomeFailed, Key: c.Target().Key, Err: ErrNotAttempted})
		}
	}

	if len(files) > 0 {
		a.logger.Warn("Apply stopped early", zap.Int("skipped_files", len(files)))
	}
}

type edit struct {
	start, end int
	text       string
}

type planned struct {
	change artifact.Change
	key    string
}

func (a *Applier) applyFile(file string, changes []artifact.Change, sum *Summary) (FileResult, error) {
	path := filepath.Join(a.opts.Root, filepath.FromSlash(file))
	res := FileResult{Path: file}
	log := a.logger.With(zap.String("file", file))

	fail := func(err error, list []planned) {
		res.Err = err
		for _, p := range list {
			sum.record(Outcome{Entry: p.change.Target(), Kind: OutcomeFailed, Key: p.key, Err: err})
		}
	}

	var plan []planned

	for _, c := range changes {
		key, err := a.planKey(c)
		if err != nil {
			sum.record(Outcome{Entry: c.Target(), Kind: OutcomeFailed, Key: c.Target().Key, Err: err})
			continue
		}

		plan = append(plan, planned{change: c, key: key})
	}

	if len(plan) == 0 {
		return res, nil
	}

	original, err := afero.ReadFile(a.fs, path)
	if err != nil {
		fail(&WriteError{Path: file, Op: "read", Err: err}, plan)
		return res, nil
	}

	content, outcomes := a.patch(string(original), plan)

	changed := content != string(original)
	res.Changed = changed

	if changed && !a.opts.DryRun {
		if a.opts.Backups != nil {
			rec, err := a.opts.Backups.Snapshot(path, original, "apply")
			if err != nil {
				fail(&WriteError{Path: file, Op: "backup", Err: err}, plan)
				return res, nil
			}

			res.BackupID = rec.ID
		}

		if err := fsutil.WriteFileAtomic(a.fs, path, []byte(content)); err != nil {
			log.Error("Failed to write file", zap.Error(err))
			fail(&WriteError{Path: file, Op: "write", Err: err}, plan)

			return res, nil
		}
	}

	for _, o := range outcomes {
		sum.record(o)
	}

	if err := a.commitKeys(outcomes, sum); err != nil {
		res.Err = err
		return res, err
	}

	log.Info("Applied file",
		zap.Bool("changed", changed),
		zap.Bool("dry_run", a.opts.DryRun),
		zap.String("backup", res.BackupID))

	return res, nil
}

// planKey returns the key a change writes to source. A create key that is
// already in the catalog with other text gets the first free suffix.
func (a *Applier) planKey(c artifact.Change) (string, error) {
	e := c.Target()

	if c.Action() == resolve.Reuse {
		return e.Key, nil
	}

	if key, ok := a.keys[e.Key]; ok {
		return key, nil
	}

	for n := 0; n <= a.opts.MaxSuffixAttempts; n++ {
		key := e.Key
		if n > 0 {
			key += strconv.Itoa(n)
		}

		if _, taken := a.pending[key]; taken {
			continue
		}

		if a.catalog.Has(key) && !a.sameTexts(key, e.TargetText) {
			continue
		}

		a.keys[e.Key] = key
		if !a.catalog.Has(key) {
			a.pending[key] = struct{}{}
		}

		return key, nil
	}

	return "", &catalog.DuplicateKeyError{Key: e.Key, Attempts: a.opts.MaxSuffixAttempts}
}

func (a *Applier) sameTexts(key string, texts map[string]string) bool {
	have := a.catalog.Texts(key)

	for _, loc := range a.catalog.Locales() {
		if have[loc] != texts[loc] {
			return false
		}
	}

	return true
}

// patch rewrites the planned literals of one file. Edits are collected per
// line against the original content and applied together.
func (a *Applier) patch(content string, plan []planned) (string, []Outcome) {
	lines := strings.Split(content, "\n")
	edits := map[int][]edit{}

	var outcomes []Outcome

	applied := 0

	for _, p := range plan {
		e := p.change.Target()
		if e.Line < 1 || e.Line > len(lines) {
			outcomes = append(outcomes, staleOutcome(p))
			continue
		}

		li := e.Line - 1
		start := literalAt(lines[li], e.Literal, e.Column)

		switch {
		case start >= 0:
			edits[li] = append(edits[li], edit{start, start + len(e.Literal), a.opts.Accessor + "." + p.key})
			if cl, c, ok := constFor(lines, e, start); ok {
				edits[cl] = append(edits[cl], c)
			}

			outcomes = append(outcomes, Outcome{Entry: e, Kind: OutcomeApplied, Key: p.key})
			applied++
		case artifact.AppliedAt(lines, li, a.opts.Accessor, a.opts.ImportLine, p.key):
			outcomes = append(outcomes, Outcome{Entry: e, Kind: OutcomeAlreadyApplied, Key: p.key})
		default:
			outcomes = append(outcomes, staleOutcome(p))
		}
	}

	for li, list := range edits {
		lines[li] = applyEdits(lines[li], list)
	}

	if applied > 0 {
		lines = a.injectImport(lines)
	}

	sort.SliceStable(outcomes, func(i, j int) bool {
		return positionLess(outcomes[i].Entry, outcomes[j].Entry)
	})

	return strings.Join(lines, "\n"), outcomes
}

func staleOutcome(p planned) Outcome {
	e := p.change.Target()

	return Outcome{
		Entry: e,
		Kind:  OutcomeStale,
		Key:   p.key,
		Err:   &StaleReferenceError{File: e.File, Line: e.Line, Literal: e.Literal},
	}
}

// literalAt finds literal in line, preferring the recorded column.
func literalAt(line, literal string, column int) int {
	if column >= 0 && column+len(literal) <= len(line) && line[column:column+len(literal)] == literal {
		return column
	}

	return strings.Index(line, literal)
}

// constFor finds the const keyword to drop for the literal of e at start.
// A literal on a later line than its widget call is searched back up to the
// line the call starts on.
func constFor(lines []string, e *artifact.Entry, start int) (int, edit, bool) {
	li := e.Line - 1
	if c, ok := constBefore(lines[li], start); ok {
		return li, c, true
	}

	if e.PatternLine < 1 || e.PatternLine >= e.Line {
		return 0, edit{}, false
	}

	for j := li - 1; j >= e.PatternLine-1; j-- {
		if c, ok := constBefore(lines[j], len(lines[j])); ok {
			return j, c, true
		}
	}

	return 0, edit{}, false
}

// constBefore returns an edit removing the nearest const keyword left of pos.
func constBefore(line string, pos int) (edit, bool) {
	locs := constRe.FindAllStringIndex(line[:pos], -1)
	if len(locs) == 0 {
		return edit{}, false
	}

	last := locs[len(locs)-1]

	return edit{start: last[0], end: last[1]}, true
}

// applyEdits applies non-overlapping edits of one line.
func applyEdits(line string, edits []edit) string {
	edits = lo.UniqBy(edits, func(e edit) int { return e.start })
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })

	for _, e := range edits {
		line = line[:e.start] + e.text + line[e.end:]
	}

	return line
}

// injectImport adds the import line after the last import, or at the top.
// The new line copies the CRLF ending of the line it is placed next to.
func (a *Applier) injectImport(lines []string) []string {
	if artifact.ImportIndex(lines, a.opts.ImportLine) >= 0 {
		return lines
	}

	last := artifact.LastImport(lines)

	want := strings.TrimSpace(a.opts.ImportLine)
	if strings.HasSuffix(lines[max(last, 0)], "\r") {
		want += "\r"
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:last+1]...)
	out = append(out, want)
	out = append(out, lines[last+1:]...)

	return out
}

// commitKeys adds the create keys of successful outcomes to the catalog
// and persists it.
func (a *Applier) commitKeys(outcomes []Outcome, sum *Summary) error {
	added := 0

	for _, o := range outcomes {
		if o.Kind != OutcomeApplied && o.Kind != OutcomeAlreadyApplied {
			continue
		}

		if _, ok := a.pending[o.Key]; !ok {
			continue
		}

		if _, done := a.added[o.Key]; done {
			continue
		}

		if !a.opts.DryRun {
			if err := a.catalog.Commit(o.Key, o.Entry.TargetText); err != nil {
				return fmt.Errorf("failed to add key %s: %w", o.Key, err)
			}
		}

		a.added[o.Key] = struct{}{}
		sum.KeysAdded = append(sum.KeysAdded, o.Key)
		added++
	}

	if added == 0 || a.opts.DryRun {
		return nil
	}

	if err := a.catalog.Persist(); err != nil {
		return &WriteError{Path: "catalog", Op: "persist", Err: err}
	}

	return nil
}

func positionLess(a, b *artifact.Entry) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}

	return a.Column < b.Column
}
