// Package extract finds hardcoded natural-language literals in UI source.
//
// The scanner is heuristic, not a parser. Comments are blanked out first,
// then every line opens a window that runs until the brackets opened on it are
// balanced again (capped at Options.WindowLines lines). Each pattern is a
// regex for the code leading up to a quoted literal, for example
//
//	ElevatedButton(
//	  onPressed: onDelete,
//	  child: const Text(
//	    '删除全部',
//	  ),
//	)
//
// and matches must start on the window's first line. Literals are accepted by
// the script group of the pattern (Han text, or capitalized Latin word shapes)
// and then filtered: log and assert lines, URLs, paths, hash-like tokens,
// interpolated strings and denylisted lines are dropped. A literal that lies
// beyond the window of the code that introduces it is not extracted.
package extract
