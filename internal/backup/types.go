// Package backup keeps restorable snapshots of source files taken before
// they are rewritten.
package backup

import (
	"time"
)

// Record describes one pre-mutation snapshot of a file.
type Record struct {
	// ID is the unique backup identifier
	ID string `json:"id"`

	// Timestamp is when the snapshot was taken
	Timestamp time.Time `json:"timestamp"`

	// Source is the path of the file that was snapshotted
	Source string `json:"source"`

	// Path is where the snapshot content is stored
	Path string `json:"path"`

	// Size is the snapshot size in bytes
	Size int64 `json:"size"`

	// IntegrityHash is the SHA-256 hash of the snapshot
	IntegrityHash string `json:"integrity_hash"`

	// Reason is an optional note such as the mapping file being applied
	Reason string `json:"reason,omitempty"`
}
