package apply

import (
	"errors"
	"fmt"
)

// ErrNotAttempted marks the files and entries of a run that stopped before
// reaching them.
var ErrNotAttempted = errors.New("not attempted: apply stopped early")

// StaleReferenceError reports an entry whose literal is no longer on its line.
type StaleReferenceError struct {
	File    string
	Line    int
	Literal string
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("%s:%d no longer contains %s", e.File, e.Line, e.Literal)
}

// WriteError reports an IO failure that aborted one file.
type WriteError struct {
	Path string
	// Op is the step that failed: read, backup, write or persist.
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
