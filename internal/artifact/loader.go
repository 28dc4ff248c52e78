package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"arbsweep/internal/diagnostic"
	"arbsweep/internal/fsutil"
)

// FileSuffix ends every artifact file name.
const FileSuffix = "_mapping.yaml"

// TimestampLayout prefixes artifact file names so that names sort by time.
const TimestampLayout = "20060102-150405"

// ErrNoArtifact is returned by Latest when the directory holds no artifact.
var ErrNoArtifact = errors.New("no mapping artifact found")

// ValidationError reports an artifact that cannot be applied.
type ValidationError struct {
	Path        string
	Diagnostics *diagnostic.Diagnostics
}

func (e *ValidationError) Error() string {
	msg := "invalid mapping artifact"
	if e.Path != "" {
		msg += " " + e.Path
	}

	if err := e.Diagnostics.Error(); err != nil {
		msg += ": " + err.Error()
	}

	return msg
}

// Load reads and parses the artifact at path.
func Load(fs afero.Fs, path string) (*File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping artifact %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}

		return nil, err
	}

	return f, nil
}

// Parse parses YAML data into a File. Unknown fields are rejected so that
// reviewer typos do not silently drop a change.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		diags := &diagnostic.Diagnostics{}
		diags.AddError("yaml_parse", err.Error(), "", "")

		return nil, &ValidationError{Diagnostics: diags}
	}

	applyDefaults(&f)

	if diags := checkNulls(&f); diags.HasErrors() {
		return nil, &ValidationError{Diagnostics: diags}
	}

	return &f, nil
}

// checkNulls reports list items written as null, which YAML decodes to nil
// entries.
func checkNulls(f *File) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	names := make([]string, 0, len(f.Categories))
	for name := range f.Categories {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		cat := f.Categories[name]
		if cat == nil {
			continue
		}

		for _, list := range []struct {
			action  string
			entries []*Entry
		}{{"reuse", cat.Reuse}, {"create", cat.Create}} {
			for i, e := range list.entries {
				if e == nil {
					loc := fmt.Sprintf("categories.%s.%s[%d]", name, list.action, i)
					diags.AddError("null_entry", "entry is null", loc, "")
				}
			}
		}
	}

	return diags
}

func applyDefaults(f *File) {
	if f.Categories == nil {
		f.Categories = map[string]*Category{}
	}

	if f.Root == "" {
		f.Root = "."
	}
}

// Marshal serializes a File to YAML with 2-space indentation.
func Marshal(f *File) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("failed to marshal mapping artifact: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Write stores f in dir under a timestamped name and returns its path.
func Write(fs afero.Fs, dir string, f *File) (string, error) {
	data, err := Marshal(f)
	if err != nil {
		return "", err
	}

	ts := f.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	path := filepath.Join(dir, ts.Local().Format(TimestampLayout)+FileSuffix)

	if err := fsutil.WriteFileAtomic(fs, path, data); err != nil {
		return "", fmt.Errorf("failed to write mapping artifact %s: %w", path, err)
	}

	return path, nil
}

// Save rewrites f at path, for example after approving entries.
func Save(fs afero.Fs, path string, f *File) error {
	data, err := Marshal(f)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(fs, path, data)
}

// Latest returns the artifact in dir with the greatest file name.
func Latest(fs afero.Fs, dir string) (string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w in %s", ErrNoArtifact, dir)
		}

		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string

	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".yaml") {
			names = append(names, info.Name())
		}
	}

	if len(names) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoArtifact, dir)
	}

	sort.Strings(names)

	return filepath.Join(dir, names[len(names)-1]), nil
}
