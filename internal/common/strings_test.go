package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"删除全部内容", 3, "删除…"},
		{"abc", 0, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestSliceHelpers(t *testing.T) {
	assert.True(t, IsEmpty([]int{}))
	assert.True(t, IsSingle([]int{1}))
	assert.True(t, IsMultiple([]int{1, 2}))

	v, ok := First([]string{"a", "b"})
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = First([]string(nil))
	assert.False(t, ok)

	assert.Equal(t, "files", Plural(2, "file"))
	assert.Equal(t, "file", Plural(1, "file"))
}
