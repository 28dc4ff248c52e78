package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbsweep/internal/artifact"
	"arbsweep/internal/backup"
)

const homeSource = `import 'package:flutter/material.dart';

class HomePage extends StatelessWidget {
  Widget build(BuildContext context) {
    return Column(children: [
      Text('保存'),
      Text('删除全部'),
    ]);
  }
}
`

type harness struct {
	fs      afero.Fs
	confirm func(string, string) (bool, error)
}

func newHarness(t *testing.T) *harness {
	t.Chdir(t.TempDir())
	t.Setenv("ARBSWEEP_CATALOG_DIR", "/proj/lib/l10n")
	t.Setenv("ARBSWEEP_EXTRACT_ROOT", "/proj")
	t.Setenv("ARBSWEEP_REPORT_DIR", "/proj/l10n_reports")
	t.Setenv("ARBSWEEP_APPLY_BACKUP_DIR", "/proj/.arbsweep/backups")

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/lib/home.dart":           homeSource,
		"/proj/lib/l10n/app_zh.arb":     `{"save": "保存"}`,
		"/proj/lib/l10n/app_en.arb":     `{"save": "Save"}`,
		"/proj/test/home_test.dart":     `Text('测试');`,
		"/proj/lib/generated/l10n.dart": `Text('生成');`,
	}

	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return &harness{fs: fs, confirm: func(string, string) (bool, error) { return true, nil }}
}

func (h *harness) run(args ...string) (int, string) {
	var out, errOut bytes.Buffer

	a := &app{fs: h.fs, out: &out, errOut: &errOut, confirm: h.confirm}
	defer a.close()

	root := newRootCommand(a)
	root.SetArgs(args)

	code := exitCode(root.ExecuteContext(context.Background()), &errOut)

	return code, out.String() + errOut.String()
}

func (h *harness) approveLatest(t *testing.T) *artifact.File {
	path, err := artifact.Latest(h.fs, "/proj/l10n_reports")
	require.NoError(t, err)

	f, err := artifact.Load(h.fs, path)
	require.NoError(t, err)

	f.Approve(func(artifact.Tagged) bool { return true })
	require.NoError(t, artifact.Save(h.fs, path, f))

	return f
}

func (h *harness) read(t *testing.T, path string) string {
	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)

	return string(data)
}

func TestExtractThenApply(t *testing.T) {
	h := newHarness(t)

	code, out := h.run("extract")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Extraction complete")

	f := h.approveLatest(t)
	total, _ := f.Count()
	assert.Equal(t, 2, total)

	code, out = h.run("apply", "--latest", "--yes")
	require.Equal(t, ExitOK, code, out)

	home := h.read(t, "/proj/lib/home.dart")
	assert.Contains(t, home, "Text(S.of(context).save)")
	assert.Contains(t, home, "Text(S.of(context).deleteAll)")
	assert.Contains(t, home, "import 'package:app/generated/l10n.dart';")

	assert.Contains(t, h.read(t, "/proj/lib/l10n/app_zh.arb"), `"deleteAll": "删除全部"`)
	assert.Contains(t, h.read(t, "/proj/lib/l10n/app_en.arb"), `"deleteAll": "删除全部"`)

	assert.Equal(t, `Text('测试');`, h.read(t, "/proj/test/home_test.dart"))

	// A second run finds nothing left to patch.
	code, out = h.run("apply", "--latest", "--yes")
	assert.Equal(t, ExitOK, code, out)
	assert.Equal(t, home, h.read(t, "/proj/lib/home.dart"))
}

func TestExtractAutoApproveReuse(t *testing.T) {
	h := newHarness(t)

	code, out := h.run("extract", "--auto-approve-reuse")
	require.Equal(t, ExitOK, code, out)

	path, err := artifact.Latest(h.fs, "/proj/l10n_reports")
	require.NoError(t, err)

	f, err := artifact.Load(h.fs, path)
	require.NoError(t, err)

	total, approved := f.Count()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, approved)
}

func TestExtractNoFiles(t *testing.T) {
	h := newHarness(t)

	code, out := h.run("extract", "--root", "/empty")
	assert.Equal(t, ExitInvalid, code)
	assert.Contains(t, out, "no source files matched")
}

func TestApplyDeclined(t *testing.T) {
	h := newHarness(t)
	h.confirm = func(string, string) (bool, error) { return false, nil }

	code, _ := h.run("extract")
	require.Equal(t, ExitOK, code)
	h.approveLatest(t)

	code, out := h.run("apply", "--latest")
	assert.Equal(t, ExitInvalid, code)
	assert.Contains(t, out, "apply cancelled")
	assert.Equal(t, homeSource, h.read(t, "/proj/lib/home.dart"))
}

func TestApplyDryRun(t *testing.T) {
	h := newHarness(t)
	h.confirm = func(string, string) (bool, error) {
		t.Fatal("dry run must not prompt")
		return false, nil
	}

	code, _ := h.run("extract")
	require.Equal(t, ExitOK, code)
	h.approveLatest(t)

	code, out := h.run("apply", "--latest", "--dry-run")
	assert.Equal(t, ExitOK, code, out)
	assert.Equal(t, homeSource, h.read(t, "/proj/lib/home.dart"))
	assert.NotContains(t, h.read(t, "/proj/lib/l10n/app_en.arb"), "deleteAll")
}

func TestApplyStaleExitsPartial(t *testing.T) {
	h := newHarness(t)

	code, _ := h.run("extract")
	require.Equal(t, ExitOK, code)
	h.approveLatest(t)

	edited := bytes.Replace([]byte(homeSource), []byte("删除全部"), []byte("清空"), 1)
	require.NoError(t, afero.WriteFile(h.fs, "/proj/lib/home.dart", edited, 0o644))

	code, out := h.run("apply", "--latest", "--yes")
	assert.Equal(t, ExitPartial, code, out)

	home := h.read(t, "/proj/lib/home.dart")
	assert.Contains(t, home, "Text(S.of(context).save)")
	assert.Contains(t, home, "Text('清空')")
}

func TestApplyArguments(t *testing.T) {
	h := newHarness(t)

	code, out := h.run("apply")
	assert.Equal(t, ExitInvalid, code)
	assert.Contains(t, out, "no artifact given")

	code, _ = h.run("apply", "--latest")
	assert.Equal(t, ExitInvalid, code)

	code, _ = h.run("apply", "x.yaml", "--latest")
	assert.Equal(t, ExitInvalid, code)
}

func TestApplyInvalidArtifact(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, afero.WriteFile(h.fs, "/proj/bad.yaml", []byte("version: \"9\"\nroot: /proj\n"), 0o644))

	code, out := h.run("apply", "/proj/bad.yaml", "--yes")
	assert.Equal(t, ExitInvalid, code)
	assert.Contains(t, out, "unsupported_version")
}

func TestRestore(t *testing.T) {
	h := newHarness(t)

	code, _ := h.run("extract")
	require.Equal(t, ExitOK, code)
	h.approveLatest(t)

	code, _ = h.run("apply", "--latest", "--yes")
	require.Equal(t, ExitOK, code)

	code, out := h.run("restore", "--list")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "1 backup")

	records, err := backup.NewStore(h.fs, "/proj/.arbsweep/backups").List()
	require.NoError(t, err)
	require.Len(t, records, 1)

	code, out = h.run("restore", records[0].ID)
	require.Equal(t, ExitOK, code, out)
	assert.Equal(t, homeSource, h.read(t, "/proj/lib/home.dart"))

	code, _ = h.run("restore", "missing-id")
	assert.Equal(t, ExitInvalid, code)

	code, out = h.run("restore", "--delete", records[0].ID)
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "Deleted backup")

	records, err = backup.NewStore(h.fs, "/proj/.arbsweep/backups").List()
	require.NoError(t, err)
	assert.Empty(t, records)

	code, _ = h.run("restore", "--delete", "missing-id")
	assert.Equal(t, ExitInvalid, code)
}

func TestCatalogCheckAndSort(t *testing.T) {
	h := newHarness(t)

	code, out := h.run("catalog", "check")
	assert.Equal(t, ExitOK, code, out)

	require.NoError(t, afero.WriteFile(h.fs, "/proj/lib/l10n/app_en.arb", []byte(`{"save": "Save", "cancel": "Cancel"}`), 0o644))

	code, out = h.run("catalog", "check")
	assert.Equal(t, ExitPartial, code)
	assert.Contains(t, out, "cancel")

	code, _ = h.run("catalog", "sort")
	require.Equal(t, ExitOK, code)
	assert.Regexp(t, `(?s)"cancel".*"save"`, h.read(t, "/proj/lib/l10n/app_en.arb"))
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer

	root := NewRootCommand(afero.NewMemMapFs(), &out, &out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "arbsweep version dev")
}

func TestCatalogCheckUnusedAndDuplicates(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, afero.WriteFile(h.fs, "/proj/lib/l10n/app_zh.arb", []byte(`{"save": "保存", "store": "保存", "cancel": "取消"}`), 0o644))
	require.NoError(t, afero.WriteFile(h.fs, "/proj/lib/l10n/app_en.arb", []byte(`{"save": "Save", "store": "Save", "cancel": "Cancel"}`), 0o644))
	require.NoError(t, afero.WriteFile(h.fs, "/proj/lib/settings.dart", []byte("Text(S.of(context).save),\nText(S.of(context)\n    .store),\n"), 0o644))

	code, out := h.run("catalog", "check", "--unused", "--duplicates")
	require.Equal(t, ExitOK, code, out)
	assert.Contains(t, out, "1 unused key")
	assert.Contains(t, out, "cancel")
	assert.Contains(t, out, "save, store")

	code, out = h.run("catalog", "check")
	require.Equal(t, ExitOK, code, out)
	assert.NotContains(t, out, "unused")
}

func TestExtractConfiguredPatterns(t *testing.T) {
	h := newHarness(t)

	config := `extract:
  patterns:
    - script: han
      patterns:
        - id: notify_call
          context: message
          prefix: '\bnotify\s*\(\s*'
`
	require.NoError(t, os.WriteFile("arbsweep.yaml", []byte(config), 0o644))
	require.NoError(t, afero.WriteFile(h.fs, "/proj/lib/notify.dart", []byte("void done() {\n  notify('已完成');\n}\n"), 0o644))

	code, out := h.run("extract")
	require.Equal(t, ExitOK, code, out)

	path, err := artifact.Latest(h.fs, "/proj/l10n_reports")
	require.NoError(t, err)

	f, err := artifact.Load(h.fs, path)
	require.NoError(t, err)

	entries := f.Entries()
	require.Len(t, entries, 1, "configured groups replace the widget patterns")
	assert.Equal(t, "lib/notify.dart", entries[0].File)
	assert.Equal(t, "notify_call", entries[0].Pattern)
	assert.Equal(t, "zh", entries[0].SourceLocale)
}
