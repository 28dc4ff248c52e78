package fsutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// File permission constants.
const (
	DirPerm  = 0o755
	FilePerm = 0o644
)

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, so readers never observe a partial file.
// An existing file keeps its permission bits.
func WriteFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)

	err := fs.MkdirAll(dir, DirPerm)
	if err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	perm := os.FileMode(FilePerm)
	if info, statErr := fs.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}

	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)

		return cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("writing temp file for %s: %w", path, err))
	}

	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("syncing temp file for %s: %w", path, err))
	}

	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("closing temp file for %s: %w", path, err)
	}

	if err := fs.Chmod(tmpName, perm); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}

	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("renaming temp file onto %s: %w", path, err)
	}

	return nil
}
