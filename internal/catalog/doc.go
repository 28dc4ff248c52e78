// Package catalog holds the multi-locale string catalog backed by one flat
// ARB (JSON) file per locale.
//
// Keys starting with the metadata prefix ("@" by default) are carried through
// load and persist untouched but never take part in lookups. Content keys are
// matched exactly or fuzzily per locale, new keys are added with Commit, and
// Persist rewrites changed locale files atomically in a stable key order:
//
//	{
//	  "@@locale": "en",
//	  "about": "About",
//	  "deleteAll": "Delete all",
//	  "save": "Save"
//	}
package catalog
