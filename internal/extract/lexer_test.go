package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexMasksComments(t *testing.T) {
	src := strings.Join([]string{
		`Text('保存'), // Text('注释')`,
		`/* Text('块') /* nested */ still */ Text("a // b")`,
		`final url = 'http://x.com'; // trailing`,
		`/**`,
		` * doc Text('文档')`,
		` */`,
	}, "\n")

	lx := lex(src)
	require.Len(t, lx.lines, 6)

	orig := strings.Split(src, "\n")
	for i := range orig {
		assert.Len(t, lx.lines[i], len(orig[i]), "line %d keeps its byte length", i+1)
	}

	assert.Equal(t, `Text('保存'),`, strings.TrimRight(lx.lines[0], " "))
	assert.Equal(t, `Text("a // b")`, strings.TrimSpace(lx.lines[1]))
	assert.Equal(t, `final url = 'http://x.com';`, strings.TrimRight(lx.lines[2], " "))
	assert.Empty(t, strings.TrimSpace(lx.lines[4]))
}

func TestLexBalance(t *testing.T) {
	src := strings.Join([]string{
		`ElevatedButton(`,
		`  onPressed: () {},`,
		`  child: Text(`,
		`    '删除 (全部)',`,
		`  ),`,
		`)`,
		`Text('x')`,
	}, "\n")

	lx := lex(src)
	assert.Equal(t, []int{1, 0, 1, 0, -1, -1, 0}, lx.delta)

	end, closed := lx.window(0, 8)
	assert.Equal(t, 5, end)
	assert.True(t, closed)

	end, closed = lx.window(0, 3)
	assert.Equal(t, 2, end)
	assert.False(t, closed)

	end, closed = lx.window(6, 8)
	assert.Equal(t, 6, end)
	assert.True(t, closed)
}

func TestLexStrings(t *testing.T) {
	src := "final a = r'C:\\path\\';\nfinal b = '''\nmulti ( line\n''';\nfinal c = 'it\\'s (';"

	lx := lex(src)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, lx.delta, "brackets inside strings do not count")
}
