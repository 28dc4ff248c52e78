package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnescape(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`保存`, "保存"},
		{`it\'s`, "it's"},
		{`say \"hi\"`, `say "hi"`},
		{`a\nb`, "a\nb"},
		{`\u4fdd\u5b58`, "保存"},
		{`\u{1F600}`, "😀"},
		{`cost \$5`, "cost $5"},
		{`back\\slash`, `back\slash`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Unescape(tt.raw))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  保存  ", "保存"},
		{"「删除全部」", "删除全部"},
		{"确定要删除吗？", "确定要删除吗"},
		{"Are  you\n sure?", "Are you sure"},
		{"...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}

	assert.Equal(t, "Are you sure?", Display("Are  you\n sure?"))
}

func TestInterpolated(t *testing.T) {
	assert.True(t, Interpolated(`Hello $name`))
	assert.True(t, Interpolated(`${count} 项`))
	assert.False(t, Interpolated(`cost \$5`))
	assert.False(t, Interpolated(`保存`))
}

func TestFilterExcludedText(t *testing.T) {
	f, err := NewFilter(nil, 10)
	require.NoError(t, err)

	excluded := []string{
		"https://example.com",
		"package:app/main.dart",
		"assets/images/logo.png",
		"images/logo.png",
		"logo.png",
		"aGVsbG8gd29ybGQgaGVsbG8gd29ybGQ",
		"0xDEADBEEFCAFE",
		"这是一个非常非常长的句子超过十个字",
	}
	for _, s := range excluded {
		assert.True(t, f.ExcludedText(s), s)
	}

	kept := []string{"保存", "Save file", "是/否"}
	for _, s := range kept {
		assert.False(t, f.ExcludedText(s), s)
	}
}

func TestFilterExcludedLine(t *testing.T) {
	f, err := NewFilter([]string{`测试`}, 0)
	require.NoError(t, err)

	excluded := []string{
		`print('保存');`,
		`  debugPrint('按钮点击');`,
		`logger.info('加载完成');`,
		`developer.log('x');`,
		`throw Exception('错误');`,
		`assert(x != null, '不能为空');`,
		`import 'package:flutter/material.dart';`,
		`@Deprecated('旧接口')`,
		`Text('测试数据'),`,
	}
	for _, s := range excluded {
		assert.True(t, f.ExcludedLine(s), s)
	}

	kept := []string{
		`Text('保存'),`,
		`showDialog(context: context, builder: (_) => AlertDialog(title: Text('提示')));`,
		`final catalog = load('x');`,
	}
	for _, s := range kept {
		assert.False(t, f.ExcludedLine(s), s)
	}

	_, err = NewFilter([]string{`(`}, 0)
	require.Error(t, err)
}

func TestAcceptLatin(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Save", true},
		{"Save file", true},
		{"Are you sure?", true},
		{"Don't save", true},
		{"Yes, delete", true},
		{"OK", true},
		{"Ok", false},
		{"A", false},
		{"HTTP", false},
		{"JSON DATA", false},
		{"MyWidget", false},
		{"TextField", false},
		{"save", false},
		{"Version 2", false},
		{"user_name", false},
		{"Widget", false},
		{"保存", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, AcceptLatin(tt.text))
		})
	}
}

func TestAcceptHan(t *testing.T) {
	assert.True(t, AcceptHan("保存"))
	assert.True(t, AcceptHan("共 3 项"))
	assert.False(t, AcceptHan("Save"))
}
