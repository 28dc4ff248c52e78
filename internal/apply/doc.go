// Package apply rewrites source files for the approved entries of a mapping
// artifact and extends the catalog with the keys they create.
//
// Files are processed one at a time in path order. Each file is backed up,
// patched bottom-up and written atomically; an IO failure aborts only that
// file. New keys are committed after their file is written and the catalog
// is persisted after every file.
package apply
