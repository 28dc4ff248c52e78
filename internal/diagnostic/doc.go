// Package diagnostic provides structured validation findings for catalog
// files and mapping artifacts.
//
// Key capabilities:
//   - Coded errors, warnings and infos tied to a source location and key
//   - Merging findings from several validation passes
//   - Collapsing error findings into a single error value
package diagnostic
