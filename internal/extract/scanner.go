package extract

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"arbsweep/internal/fsutil"
	"arbsweep/internal/worker"
)

// Defaults for Options.
const (
	DefaultWindowLines = 8
	DefaultMaxLength   = 100
)

// DefaultInclude selects Dart sources.
var DefaultInclude = []string{"**/*.dart"}

// DefaultExclude skips generated code, tests and tool directories.
var DefaultExclude = []string{
	"**/*.g.dart",
	"**/*.freezed.dart",
	"**/*.gr.dart",
	"**/generated/**",
	"**/l10n/**",
	"test/**",
	"build/**",
	".dart_tool/**",
	"**/.git/**",
	".arbsweep/**",
}

// Options configures a Scanner.
type Options struct {
	Include []string
	Exclude []string
	// Denylist holds extra line exclusion regexes.
	Denylist []string
	// MaxLength is the maximum literal length in runes.
	MaxLength int
	// WindowLines caps the lines one logical statement may span.
	WindowLines int
	Workers     int
	Patterns    *PatternSet
	Logger      *zap.Logger
	// OnFile is called in scan order after each file has been yielded.
	OnFile func(rel string)
}

// Scanner finds candidates under a root directory.
type Scanner struct {
	fs       afero.Fs
	matcher  *fsutil.Matcher
	filter   *Filter
	patterns *PatternSet
	window   int
	workers  int
	logger   *zap.Logger
	onFile   func(string)
}

// NewScanner validates opts and returns a Scanner reading from fs.
func NewScanner(fs afero.Fs, opts Options) (*Scanner, error) {
	if opts.Include == nil {
		opts.Include = DefaultInclude
	}

	if opts.Exclude == nil {
		opts.Exclude = DefaultExclude
	}

	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	if opts.WindowLines <= 0 {
		opts.WindowLines = DefaultWindowLines
	}

	if opts.Patterns == nil {
		opts.Patterns = DefaultPatternSet(GroupOptions{})
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	matcher, err := fsutil.NewMatcher(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}

	filter, err := NewFilter(opts.Denylist, opts.MaxLength)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		fs:       fs,
		matcher:  matcher,
		filter:   filter,
		patterns: opts.Patterns,
		window:   opts.WindowLines,
		workers:  opts.Workers,
		logger:   opts.Logger,
		onFile:   opts.OnFile,
	}, nil
}

// Files returns the selected files under root as sorted slash paths.
func (s *Scanner) Files(root string) ([]string, error) {
	var files []string

	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if info.IsDir() {
			if s.matcher.Excluded(rel + "/") {
				return filepath.SkipDir
			}

			return nil
		}

		if s.matcher.Match(rel) {
			files = append(files, rel)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)

	return files, nil
}

type fileResult struct {
	candidates []Candidate
	err        error
}

// Scan yields the candidates of every selected file under root, ordered by
// file, line and column. Files are read and matched in parallel a bounded
// distance ahead of the consumer; stopping the iteration stops the scan.
// Each call walks the tree again.
func (s *Scanner) Scan(ctx context.Context, root string) iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		files, err := s.Files(root)
		if err != nil {
			yield(Candidate{}, err)
			return
		}

		s.logger.Debug("Scanning files", zap.String("root", root), zap.Int("files", len(files)))

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		pool, err := worker.New("scan", s.workers, s.logger)
		if err != nil {
			yield(Candidate{}, err)
			return
		}
		defer pool.Release()

		results := make([]chan fileResult, len(files))
		for i := range results {
			results[i] = make(chan fileResult, 1)
		}

		lookahead := 2 * pool.Cap()
		next := 0

		for i, rel := range files {
			for next < len(files) && next < i+lookahead {
				idx := next
				err := pool.Submit(ctx, func(context.Context) {
					results[idx] <- s.scanPath(root, files[idx])
				})
				if err != nil {
					yield(Candidate{}, err)
					return
				}
				next++
			}

			var res fileResult
			select {
			case res = <-results[i]:
			case <-ctx.Done():
				yield(Candidate{}, ctx.Err())
				return
			}

			if res.err != nil {
				if !yield(Candidate{}, res.err) {
					return
				}
				continue
			}

			for _, c := range res.candidates {
				if !yield(c, nil) {
					return
				}
			}

			if s.onFile != nil {
				s.onFile(rel)
			}
		}
	}
}

func (s *Scanner) scanPath(root, rel string) fileResult {
	data, err := afero.ReadFile(s.fs, filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fileResult{err: fmt.Errorf("reading %s: %w", rel, err)}
	}

	if !utf8.Valid(data) {
		s.logger.Warn("Skipping file with invalid UTF-8", zap.String("file", rel))
		return fileResult{}
	}

	return fileResult{candidates: s.ScanFile(rel, data)}
}

type hit struct {
	cand Candidate
	prio int
}

// ScanFile returns the candidates of one file's content in line/column order.
func (s *Scanner) ScanFile(rel string, content []byte) []Candidate {
	src := strings.ReplaceAll(string(content), "\r\n", "\n")
	lx := lex(src)

	best := map[[2]int]hit{}

	for li, line := range lx.lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		end, _ := lx.window(li, s.window)
		window := strings.Join(lx.lines[li:end+1], "\n")

		if !strings.ContainsAny(window, `'"`) {
			continue
		}

		prio := 0

		for gi := range s.patterns.Groups {
			g := &s.patterns.Groups[gi]

			for pi := range g.Patterns {
				p := &g.Patterns[pi]
				prio++

				for _, m := range p.re.FindAllStringSubmatchIndex(window, -1) {
					if m[0] >= len(line) {
						break
					}

					c, ok := s.candidateAt(rel, lx, li, window, m, g, p)
					if !ok {
						continue
					}

					pos := [2]int{c.Line, c.Column}
					if prev, seen := best[pos]; seen && prev.prio <= prio {
						continue
					}

					best[pos] = hit{cand: c, prio: prio}
				}
			}
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, h := range best {
		out = append(out, h.cand)
	}

	Sort(out)

	return out
}

func (s *Scanner) candidateAt(rel string, lx lexed, li int, window string, m []int, g *PatternGroup, p *Pattern) (Candidate, bool) {
	quote := "'"
	start, end := m[2*p.sq], m[2*p.sq+1]

	if start < 0 {
		quote = `"`
		start, end = m[2*p.dq], m[2*p.dq+1]
	}

	if start < 0 {
		return Candidate{}, false
	}

	raw := window[start:end]
	if Interpolated(raw) {
		return Candidate{}, false
	}

	value := Unescape(raw)
	text := Normalize(value)

	if text == "" || utf8.RuneCountInString(text) < g.MinLength {
		return Candidate{}, false
	}

	if !g.Accept(Display(value)) || s.filter.ExcludedText(text) {
		return Candidate{}, false
	}

	litLine, col := locate(lx.lines, li, start-1)
	if s.filter.ExcludedLine(lx.lines[litLine]) || (litLine != li && s.filter.ExcludedLine(lx.lines[li])) {
		return Candidate{}, false
	}

	return Candidate{
		File:       rel,
		Line:       litLine + 1,
		Column:     col,
		RawText:    raw,
		Text:       text,
		Quote:      quote,
		ContextTag: p.ContextTag,
		PatternID:  p.ID,
		Locale:     g.Locale,
		Multiline:  litLine != li,
		StartLine:  li + 1,
	}, true
}

// locate converts a byte offset within the window starting at line first
// into a line index and column.
func locate(lines []string, first, offset int) (int, int) {
	li := first
	for li < len(lines) && offset > len(lines[li]) {
		offset -= len(lines[li]) + 1
		li++
	}

	return li, offset
}

// Collect drains a scan into a slice, stopping at the first error.
func Collect(seq iter.Seq2[Candidate, error]) ([]Candidate, error) {
	var out []Candidate

	for c, err := range seq {
		if err != nil {
			return out, err
		}

		out = append(out, c)
	}

	return out, nil
}

// ErrNoFiles is returned by callers that require at least one scanned file.
var ErrNoFiles = errors.New("no source files matched")
