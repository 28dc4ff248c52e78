package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homePage = `import 'package:flutter/material.dart';

class HomePage extends StatelessWidget {
  @override
  Widget build(BuildContext context) {
    return Scaffold(
      appBar: AppBar(title: const Text('首页')),
      body: Column(
        children: [
          // Text('注释里的文字'),
          Text('保存'),
          ElevatedButton(
            onPressed: () => debugPrint('按钮点击'),
            child: const Text(
              '删除全部',
            ),
          ),
          Text("Save file"),
          Image.network('https://example.com/a.png'),
          TextField(decoration: InputDecoration(hintText: '请输入名称')),
          Text('Hello $name'),
          /* Text('块注释') */
        ],
      ),
    );
  }
}
`

func newTestScanner(t *testing.T, fs afero.Fs, opts Options) *Scanner {
	t.Helper()

	if opts.Patterns == nil {
		opts.Patterns = DefaultPatternSet(GroupOptions{Latin: true})
	}

	s, err := NewScanner(fs, opts)
	require.NoError(t, err)

	return s
}

func colOf(t *testing.T, src string, line int, literal string) int {
	t.Helper()

	lines := strings.Split(src, "\n")
	require.Less(t, line-1, len(lines))

	col := strings.Index(lines[line-1], literal)
	require.GreaterOrEqual(t, col, 0, "literal %s not on line %d", literal, line)

	return col
}

func TestScanFile(t *testing.T) {
	s := newTestScanner(t, afero.NewMemMapFs(), Options{})

	got := s.ScanFile("lib/pages/home/home_page.dart", []byte(homePage))

	type row struct {
		Line    int
		Text    string
		Context string
		Pattern string
		Locale  string
		Multi   bool
	}

	var rows []row
	for _, c := range got {
		rows = append(rows, row{c.Line, c.Text, c.ContextTag, c.PatternID, c.Locale, c.Multiline})
	}

	want := []row{
		{7, "首页", "title", "appbar_title", "zh", false},
		{11, "保存", "text", "text_widget", "zh", false},
		{15, "删除全部", "button", "button_child", "zh", true},
		{18, "Save file", "text", "text_widget", "en", false},
		{20, "请输入名称", "hint", "hint_prop", "zh", false},
	}
	require.Equal(t, want, rows, spew.Sdump(got))

	assert.Equal(t, colOf(t, homePage, 11, `'保存'`), got[1].Column)
	assert.Equal(t, colOf(t, homePage, 15, `'删除全部'`), got[2].Column)
	assert.Equal(t, `'删除全部'`, got[2].Literal())
	assert.Equal(t, `"Save file"`, got[3].Literal())
	assert.Equal(t, `"`, got[3].Quote)
	assert.Equal(t, "lib/pages/home/home_page.dart:11:16", got[1].Position())
}

func TestScanFileHanOnly(t *testing.T) {
	s := newTestScanner(t, afero.NewMemMapFs(), Options{Patterns: DefaultPatternSet(GroupOptions{})})

	for _, c := range s.ScanFile("a.dart", []byte(homePage)) {
		assert.NotEqual(t, "Save file", c.Text)
		assert.Equal(t, "zh", c.Locale)
	}
}

func TestScanFileWindowBound(t *testing.T) {
	src := strings.Join([]string{
		`Text(`,
		`  maxLines: 1,`,
		`  overflow: TextOverflow.ellipsis,`,
		`  style: TextStyle(fontSize: 12),`,
		`  textAlign: TextAlign.center,`,
		`  '很远的文字',`,
		`)`,
		`Text(`,
		`  '近处的文字',`,
		`)`,
	}, "\n")

	// Dart takes the data argument first; the extractor only follows what
	// directly trails the opening paren.
	s := newTestScanner(t, afero.NewMemMapFs(), Options{WindowLines: 2})
	got := s.ScanFile("a.dart", []byte(src))
	require.Len(t, got, 1, spew.Sdump(got))
	assert.Equal(t, "近处的文字", got[0].Text)
	assert.Equal(t, 9, got[0].Line)
	assert.True(t, got[0].Multiline)
	assert.Equal(t, 8, got[0].StartLine)

	far := strings.Join([]string{
		`AlertDialog(`,
		`  shape: RoundedRectangleBorder(),`,
		`  elevation: 4,`,
		`  title: Text(`,
		`    '确认删除',`,
		`  ),`,
		`)`,
	}, "\n")

	s = newTestScanner(t, afero.NewMemMapFs(), Options{WindowLines: 3})
	got = s.ScanFile("a.dart", []byte(far))
	require.Len(t, got, 1)
	assert.Equal(t, "text_widget", got[0].PatternID, "dialog pattern exceeds its window")

	s = newTestScanner(t, afero.NewMemMapFs(), Options{WindowLines: 8})
	got = s.ScanFile("a.dart", []byte(far))
	require.Len(t, got, 1)
	assert.Equal(t, "dialog_text", got[0].PatternID)
	assert.Equal(t, "dialog", got[0].ContextTag)
}

func TestScanFileExclusions(t *testing.T) {
	src := strings.Join([]string{
		`showToast('保存成功'); log('saved');`,
		`Text('测试数据'),`,
		`TextField(decoration: InputDecoration(hintText: 'https://例子.com')),`,
		`Text('MyWidget'),`,
		`Text('共 $count 项'),`,
		`Text(r'原始字符串'),`,
		`Text('确定'),`,
	}, "\n")

	s := newTestScanner(t, afero.NewMemMapFs(), Options{Denylist: []string{`测试`}})
	got := s.ScanFile("a.dart", []byte(src))
	require.Len(t, got, 1, spew.Sdump(got))
	assert.Equal(t, "确定", got[0].Text)
	assert.Equal(t, 7, got[0].Line)
}

func TestScanFileSameLine(t *testing.T) {
	src := `Row(children: [Text('保存'), Text('取消'), Text('保存')])`

	s := newTestScanner(t, afero.NewMemMapFs(), Options{})
	got := s.ScanFile("a.dart", []byte(src))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"保存", "取消", "保存"}, []string{got[0].Text, got[1].Text, got[2].Text})
	assert.Less(t, got[0].Column, got[1].Column)
	assert.Less(t, got[1].Column, got[2].Column)
}

func TestScanFileCRLF(t *testing.T) {
	src := "Text(\r\n  '保存',\r\n)\r\n"

	s := newTestScanner(t, afero.NewMemMapFs(), Options{})
	got := s.ScanFile("a.dart", []byte(src))
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Line)
	assert.Equal(t, "保存", got[0].RawText)
}

func seedTree(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/lib/pages/home/home_page.dart":   homePage,
		"/proj/lib/pages/settings/page.dart":    "Text('设置'),\nText('关于'),\n",
		"/proj/lib/widgets/dialog.dart":         "AlertDialog(title: Text('提示'));\n",
		"/proj/lib/models/user.g.dart":          "Text('生成的代码'),\n",
		"/proj/lib/l10n/app_localizations.dart": "Text('本地化'),\n",
		"/proj/test/widget_test.dart":           "Text('测试'),\n",
		"/proj/README.md":                       "Text('说明'),\n",
	}

	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return fs
}

func TestFiles(t *testing.T) {
	s := newTestScanner(t, seedTree(t), Options{})

	files, err := s.Files("/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"lib/pages/home/home_page.dart",
		"lib/pages/settings/page.dart",
		"lib/widgets/dialog.dart",
	}, files)
}

func TestScanIdempotent(t *testing.T) {
	fs := seedTree(t)

	var visited []string
	s := newTestScanner(t, fs, Options{Workers: 2, OnFile: func(rel string) { visited = append(visited, rel) }})

	first, err := Collect(s.Scan(context.Background(), "/proj"))
	require.NoError(t, err)
	require.Len(t, first, 8, spew.Sdump(first))

	second, err := Collect(s.Scan(context.Background(), "/proj"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.False(t, Less(first[i], first[i-1]), "candidates must be sorted")
	}

	assert.Len(t, visited, 6, "three files per scan")
	assert.Equal(t, "lib/widgets/dialog.dart", first[len(first)-1].File)
}

func TestScanEarlyStop(t *testing.T) {
	s := newTestScanner(t, seedTree(t), Options{Workers: 1})

	n := 0
	for c, err := range s.Scan(context.Background(), "/proj") {
		require.NoError(t, err)
		assert.NotEmpty(t, c.Text)
		n++
		if n == 2 {
			break
		}
	}

	assert.Equal(t, 2, n)
}

func TestScanCancelled(t *testing.T) {
	s := newTestScanner(t, seedTree(t), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(s.Scan(ctx, "/proj"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanMissingRoot(t *testing.T) {
	s := newTestScanner(t, afero.NewMemMapFs(), Options{})

	_, err := Collect(s.Scan(context.Background(), "/nope"))
	require.Error(t, err)
}

func TestCompilePatternSet(t *testing.T) {
	set, err := CompilePatternSet([]GroupSpec{{
		Script: ScriptHan,
		Locale: "zh-Hant",
		Patterns: []PatternSpec{
			{ID: "custom_label", ContextTag: "label", Prefix: `\bMyLabel\(\s*`},
		},
	}})
	require.NoError(t, err)

	s := newTestScanner(t, afero.NewMemMapFs(), Options{Patterns: set})
	got := s.ScanFile("a.dart", []byte("MyLabel('設定')\nText('忽略')\n"))
	require.Len(t, got, 1)
	assert.Equal(t, "custom_label", got[0].PatternID)
	assert.Equal(t, "zh-Hant", got[0].Locale)

	_, err = CompilePatternSet([]GroupSpec{{Script: "cyrillic", Locale: "ru"}})
	require.Error(t, err)

	_, err = CompilePatternSet([]GroupSpec{{Script: ScriptHan}})
	require.Error(t, err)

	_, err = CompilePatternSet(nil)
	require.Error(t, err)

	_, err = CompilePatternSet([]GroupSpec{{Script: ScriptHan, Locale: "zh", Patterns: []PatternSpec{{ID: "bad", Prefix: `(`}}}})
	require.Error(t, err)
}
