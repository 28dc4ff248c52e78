package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"arbsweep/internal/fsutil"
)

const metadataDirName = ".metadata"

// ErrNotFound is returned when no record exists for a backup ID.
var ErrNotFound = errors.New("backup not found")

// Store saves snapshots under a backup directory. Each snapshot lives in its
// own directory named after the timestamp and ID; metadata is kept as JSON in
// a ".metadata" directory so List does not have to walk the snapshots.
type Store struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// NewStore creates a Store rooted at dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir, now: time.Now}
}

// Dir returns the backup directory.
func (s *Store) Dir() string {
	return s.dir
}

// Snapshot stores content as the pre-mutation state of source.
func (s *Store) Snapshot(source string, content []byte, reason string) (*Record, error) {
	ts := s.now().UTC()
	id := uuid.NewString()

	name := fmt.Sprintf("%s_%s", ts.Format("20060102-150405.000000000"), id[:8])
	path := filepath.Join(s.dir, name, filepath.Base(source))

	if err := fsutil.WriteFileAtomic(s.fs, path, content); err != nil {
		return nil, fmt.Errorf("failed to write backup of %s: %w", source, err)
	}

	rec := &Record{
		ID:            id,
		Timestamp:     ts,
		Source:        source,
		Path:          path,
		Size:          int64(len(content)),
		IntegrityHash: hashBytes(content),
		Reason:        reason,
	}

	if err := s.saveMetadata(rec); err != nil {
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	return rec, nil
}

// Get loads the record for id. A unique ID prefix is accepted.
func (s *Store) Get(id string) (*Record, error) {
	rec, err := s.loadMetadata(id)
	if err == nil {
		return rec, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var found *Record

	for _, r := range all {
		if strings.HasPrefix(r.ID, id) {
			if found != nil {
				return nil, fmt.Errorf("backup id prefix %q is ambiguous", id)
			}

			found = r
		}
	}

	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return found, nil
}

// Restore verifies the snapshot for id and writes it back over its source.
func (s *Store) Restore(id string) (*Record, error) {
	rec, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	data, err := s.verify(rec)
	if err != nil {
		return nil, err
	}

	if err := fsutil.WriteFileAtomic(s.fs, rec.Source, data); err != nil {
		return nil, fmt.Errorf("failed to restore %s: %w", rec.Source, err)
	}

	return rec, nil
}

// List returns all records, newest first.
func (s *Store) List() ([]*Record, error) {
	metadataDir := filepath.Join(s.dir, metadataDirName)

	entries, err := afero.ReadDir(s.fs, metadataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("failed to read metadata directory: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		rec, err := s.loadMetadata(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Skip invalid metadata files
			continue
		}

		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].ID < records[j].ID
	})

	return records, nil
}

// Delete removes a snapshot and its metadata.
func (s *Store) Delete(id string) error {
	rec, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.fs.RemoveAll(filepath.Dir(rec.Path)); err != nil {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}

	metadataPath := filepath.Join(s.dir, metadataDirName, rec.ID+".json")
	if err := s.fs.Remove(metadataPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata file: %w", err)
	}

	return nil
}

func (s *Store) verify(rec *Record) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, rec.Path)
	if err != nil {
		return nil, fmt.Errorf("backup file not found: %w", err)
	}

	if hashBytes(data) != rec.IntegrityHash {
		return nil, fmt.Errorf("integrity check failed for backup %s: hash mismatch", rec.ID)
	}

	return data, nil
}

func (s *Store) saveMetadata(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(s.fs, filepath.Join(s.dir, metadataDirName, rec.ID+".json"), data)
}

func (s *Store) loadMetadata(id string) (*Record, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, metadataDirName, id+".json"))
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
