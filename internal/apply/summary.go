package apply

import (
	"arbsweep/internal/artifact"
)

// Exit codes of an apply run.
const (
	ExitOK      = 0
	ExitPartial = 2
)

// OutcomeKind is what happened to one entry.
type OutcomeKind int

const (
	OutcomeApplied OutcomeKind = iota
	OutcomeAlreadyApplied
	OutcomeStale
	OutcomeFailed
)

// String returns a human-readable outcome name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeApplied:
		return "applied"
	case OutcomeAlreadyApplied:
		return "already-applied"
	case OutcomeStale:
		return "stale"
	default:
		return "failed"
	}
}

// Outcome is the result for one entry.
type Outcome struct {
	Entry *artifact.Entry
	Kind  OutcomeKind
	// Key is the key written to source; it differs from Entry.Key when a
	// suffix was needed.
	Key string
	Err error
}

// FileResult is the result for one source file.
type FileResult struct {
	Path     string
	BackupID string
	// Changed is set when the file content was (or, in a dry run, would be)
	// rewritten.
	Changed bool
	Err     error
}

// Summary is the result of an apply run.
type Summary struct {
	DryRun         bool
	Applied        int
	AlreadyApplied int
	Stale          int
	Failed         int
	// KeysAdded lists the keys committed to the catalog, in commit order.
	KeysAdded []string
	Files     []FileResult
	Outcomes  []Outcome
}

func (s *Summary) record(o Outcome) {
	switch o.Kind {
	case OutcomeApplied:
		s.Applied++
	case OutcomeAlreadyApplied:
		s.AlreadyApplied++
	case OutcomeStale:
		s.Stale++
	case OutcomeFailed:
		s.Failed++
	}

	s.Outcomes = append(s.Outcomes, o)
}

// Errors returns the error of every stale or failed entry.
func (s *Summary) Errors() []error {
	var errs []error

	for _, o := range s.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}

	return errs
}

// ExitCode is ExitPartial when any entry was stale or failed.
func (s *Summary) ExitCode() int {
	if s.Stale > 0 || s.Failed > 0 {
		return ExitPartial
	}

	return ExitOK
}
