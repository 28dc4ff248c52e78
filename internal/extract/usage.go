package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// KeyUsage counts accessor.key references per key in the selected files
// under root. Commented-out references do not count.
func (s *Scanner) KeyUsage(ctx context.Context, root, accessor string) (map[string]int, error) {
	re, err := regexp.Compile(regexp.QuoteMeta(accessor) + `\s*\.\s*([A-Za-z_$][\w$]*)`)
	if err != nil {
		return nil, fmt.Errorf("invalid accessor %q: %w", accessor, err)
	}

	files, err := s.Files(root)
	if err != nil {
		return nil, err
	}

	usage := map[string]int{}

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := afero.ReadFile(s.fs, filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}

		src := lex(strings.ReplaceAll(string(data), "\r\n", "\n"))

		for _, m := range re.FindAllStringSubmatch(strings.Join(src.lines, "\n"), -1) {
			usage[m[1]]++
		}
	}

	s.logger.Debug("Counted key references", zap.Int("files", len(files)), zap.Int("keys", len(usage)))

	return usage, nil
}
