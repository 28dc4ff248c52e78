// Package match provides text normalization, rune-based Levenshtein distance
// and deterministic ranking of catalog entries for fuzzy string lookup.
//
// Key functions:
//   - NormalizeText: folds UI strings for comparison
//   - Levenshtein: computes edit distance between strings
//   - Tokens / SharesToken: word and ideograph tokenization
//   - Rank: ranks catalog entries against a query
package match
