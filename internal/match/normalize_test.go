package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Save", "save"},
		{"  Save   File ", "savefile"},
		{"保存！", "保存"},
		{"「删除全部」", "删除全部"},
		{"ＳＡＶＥ", "save"},
		{"Version 2.0", "version20"},
		{"", ""},
		{"...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeText(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"删除全部", []string{"删", "除", "全", "部"}},
		{"Save File", []string{"save", "file"}},
		{"保存 Draft2", []string{"保", "存", "draft2"}},
		{"Don't save", []string{"don", "t", "save"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokens(tt.input))
		})
	}
}

func TestSharesToken(t *testing.T) {
	assert.True(t, SharesToken("删除全部", "删除"))
	assert.True(t, SharesToken("Save file", "save"))
	assert.False(t, SharesToken("保存", "删除"))
	assert.False(t, SharesToken("Open", "Close"))
	assert.False(t, SharesToken("", "Close"))
}

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "elodie", FoldASCII("Élodie"))
	assert.Equal(t, "cafe menu", FoldASCII("Café Menu"))
	assert.Equal(t, "save", FoldASCII("Save"))
}
