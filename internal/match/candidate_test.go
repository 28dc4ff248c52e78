package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	entries := []Entry{
		{Key: "delete", Text: "删除"},
		{Key: "deleteFile", Text: "删除文件"},
		{Key: "save", Text: "保存"},
		{Key: "removeAll", Text: "删除全部"},
	}

	matches := Rank("删除全部", entries)
	require.Len(t, matches, 3, "save shares no token and must not be ranked")

	best := matches.Best()
	require.NotNil(t, best)
	assert.Equal(t, "removeAll", best.Key)
	assert.InDelta(t, 1.0, best.Score, 1e-9)
	assert.Less(t, matches[1].Score, DefaultReuseThreshold)
}

func TestRankTieBreak(t *testing.T) {
	entries := []Entry{
		{Key: "saveButton", Text: "Save"},
		{Key: "saveB", Text: "Save"},
		{Key: "saveA", Text: "Save"},
		{Key: "save", Text: "Save!"},
	}

	matches := Rank("save", entries)
	require.Len(t, matches, 4)

	var keys []string
	for _, m := range matches {
		keys = append(keys, m.Key)
	}

	// All score 1.0: shortest key first, then lexical order.
	assert.Equal(t, []string{"save", "saveA", "saveB", "saveButton"}, keys)
}

func TestRankNoSharedTokens(t *testing.T) {
	entries := []Entry{
		{Key: "open", Text: "Open"},
		{Key: "close", Text: "Close"},
	}

	assert.Empty(t, Rank("Settings", entries))
	assert.Empty(t, Rank("", entries))
	assert.Nil(t, MatchList(nil).Best())
}

func TestRankDeterministic(t *testing.T) {
	entries := []Entry{
		{Key: "b", Text: "保存文件"},
		{Key: "a", Text: "保存文档"},
		{Key: "c", Text: "保存"},
	}

	first := Rank("保存文本", entries)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rank("保存文本", entries))
	}

	// Equal score and length: lexical order decides.
	require.GreaterOrEqual(t, len(first), 2)
	assert.Equal(t, "a", first[0].Key)
	assert.Equal(t, "b", first[1].Key)
}
