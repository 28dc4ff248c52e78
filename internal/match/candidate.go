package match

import (
	"sort"
)

// Entry is a catalog value offered for ranking.
type Entry struct {
	Key  string
	Text string
}

// Match is a scored catalog entry.
type Match struct {
	Key   string
	Text  string
	Score float64 // Normalized Levenshtein similarity (0-1)
}

// MatchList is a list of matches with ranking functionality.
type MatchList []Match

// Rank scores every entry against query and returns the matches sorted best
// first. Entries that share no token with query are not matches at all, so
// two unrelated strings can never clear a threshold by edit distance alone.
func Rank(query string, entries []Entry) MatchList {
	normQuery := NormalizeText(query)
	if normQuery == "" {
		return nil
	}

	var matches MatchList

	for _, e := range entries {
		normText := NormalizeText(e.Text)
		if normText == "" {
			continue
		}

		if normText != normQuery && !SharesToken(query, e.Text) {
			continue
		}

		matches = append(matches, Match{
			Key:   e.Key,
			Text:  e.Text,
			Score: LevenshteinNormalized(normQuery, normText),
		})
	}

	sort.Sort(matches)

	return matches
}

// Len implements sort.Interface.
func (m MatchList) Len() int { return len(m) }

// Less orders by score (descending), then shorter key, then lexical key.
func (m MatchList) Less(i, j int) bool {
	if m[i].Score != m[j].Score {
		return m[i].Score > m[j].Score
	}

	if len(m[i].Key) != len(m[j].Key) {
		return len(m[i].Key) < len(m[j].Key)
	}

	return m[i].Key < m[j].Key
}

// Swap implements sort.Interface.
func (m MatchList) Swap(i, j int) { m[i], m[j] = m[j], m[i] }

// Best returns the best match, or nil if there are none.
func (m MatchList) Best() *Match {
	if len(m) == 0 {
		return nil
	}
	return &m[0]
}

// Similarity thresholds used when resolving candidates against the catalog.
const (
	// DefaultReuseThreshold is the minimum score for reusing an existing key.
	DefaultReuseThreshold = 0.9
	// DefaultReviewThreshold is the minimum score for attaching a review hint.
	DefaultReviewThreshold = 0.6
)
