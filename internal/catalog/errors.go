package catalog

import (
	"errors"
	"fmt"
)

// ErrIncompleteEntry is returned by Commit when a configured locale has no text.
var ErrIncompleteEntry = errors.New("entry is missing a configured locale")

// FormatError reports a locale file that is not a flat JSON string map.
type FormatError struct {
	Path string
	Key  string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("malformed catalog %s: key %q: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("malformed catalog %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// DuplicateKeyError is returned when a key to be committed already exists.
type DuplicateKeyError struct {
	Key string
	// Attempts is the number of suffixed variants tried by the caller, if any.
	Attempts int
}

func (e *DuplicateKeyError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("catalog key %q already exists (tried %d suffixed variants)", e.Key, e.Attempts)
	}
	return fmt.Sprintf("catalog key %q already exists", e.Key)
}
