package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, def.Catalog, cfg.Catalog)
	assert.Equal(t, def.Apply, cfg.Apply)
	assert.Equal(t, def.Report, cfg.Report)
	assert.Equal(t, def.Extract.Include, cfg.Extract.Include)
	assert.Equal(t, def.Extract.Exclude, cfg.Extract.Exclude)
	assert.Equal(t, def.Extract.WindowLines, cfg.Extract.WindowLines)
	assert.True(t, cfg.Extract.Latin)
	assert.Equal(t, def.Resolve.ModuleMarkers, cfg.Resolve.ModuleMarkers)
	assert.Equal(t, 0.9, cfg.Resolve.ReuseThreshold)
	assert.Empty(t, cfg.Extract.Patterns)
}

func TestLoad_Patterns(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
extract:
  patterns:
    - script: han
      patterns:
        - id: toast
          context: message
          prefix: '\bToast\.show\(\s*'
    - script: latin
      locale: en
      patterns:
        - id: label
          context: label
          prefix: '\blabel:\s*'
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arbsweep.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	require.Len(t, cfg.Extract.Patterns, 2)
	assert.Equal(t, PatternGroupConfig{
		Script:   "han",
		Patterns: []PatternConfig{{ID: "toast", Context: "message", Prefix: `\bToast\.show\(\s*`}},
	}, cfg.Extract.Patterns[0])
	assert.Equal(t, "en", cfg.Extract.Patterns[1].Locale)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := `
catalog:
  dir: assets/i18n
  locales: [zh, en, ja]
resolve:
  reuse_threshold: 0.95
  context_prefixes:
    button: btn
  dictionary:
    购物车: cart
apply:
  accessor: AppLocalizations.of(context)!
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arbsweep.yaml"), []byte(yaml), 0o644))
	t.Setenv("ARBSWEEP_LOG_LEVEL", "debug")
	t.Setenv("ARBSWEEP_EXTRACT_WORKERS", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "assets/i18n", cfg.Catalog.Dir)
	assert.Equal(t, []string{"zh", "en", "ja"}, cfg.Catalog.Locales)
	assert.Equal(t, "app_{locale}.arb", cfg.Catalog.FilePattern)
	assert.Equal(t, 0.95, cfg.Resolve.ReuseThreshold)
	assert.Equal(t, 0.6, cfg.Resolve.ReviewThreshold)
	assert.Equal(t, map[string]string{"button": "btn"}, cfg.Resolve.ContextPrefixes)
	assert.Equal(t, map[string]string{"购物车": "cart"}, cfg.Resolve.Dictionary)
	assert.Equal(t, "AppLocalizations.of(context)!", cfg.Apply.Accessor)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Extract.Workers)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ARBSWEEP_REPORT_DIR=out/reports\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ARBSWEEP_REPORT_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "out/reports", cfg.Report.Dir)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  dir: custom\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.Report.Dir)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "arbsweep.yaml"), []byte("catalog:\n  locales: [en]\n"), 0o644))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_locale")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no locales", func(c *Config) { c.Catalog.Locales = nil }, "catalog.locales must not be empty"},
		{"bad locale", func(c *Config) { c.Catalog.Locales = append(c.Catalog.Locales, "not a tag") }, "invalid locale"},
		{"no placeholder", func(c *Config) { c.Catalog.FilePattern = "app.arb" }, "placeholder"},
		{"han locale", func(c *Config) { c.Extract.HanLocale = "ja" }, "extract.han_locale"},
		{"latin locale", func(c *Config) { c.Extract.LatinLocale = "fr" }, "extract.latin_locale"},
		{"lengths", func(c *Config) { c.Extract.MaxLength = 0 }, "min_length"},
		{"window", func(c *Config) { c.Extract.WindowLines = 0 }, "window_lines"},
		{"thresholds", func(c *Config) { c.Resolve.ReviewThreshold = 0.95 }, "thresholds"},
		{"accessor", func(c *Config) { c.Apply.Accessor = " " }, "apply.accessor"},
		{"suffixes", func(c *Config) { c.Apply.MaxSuffixAttempts = 0 }, "max_suffix_attempts"},
		{"pattern script", func(c *Config) {
			c.Extract.Patterns = []PatternGroupConfig{{Script: "cyrillic", Patterns: []PatternConfig{{ID: "a", Prefix: "x"}}}}
		}, "must be han or latin"},
		{"empty pattern group", func(c *Config) {
			c.Extract.Patterns = []PatternGroupConfig{{Script: "han"}}
		}, "group has no patterns"},
		{"pattern prefix", func(c *Config) {
			c.Extract.Patterns = []PatternGroupConfig{{Script: "han", Patterns: []PatternConfig{{ID: "a"}}}}
		}, "id and prefix are required"},
		{"pattern locale", func(c *Config) {
			c.Extract.Patterns = []PatternGroupConfig{{Script: "latin", Locale: "fr", Patterns: []PatternConfig{{ID: "a", Prefix: "x"}}}}
		}, `locale "fr" is not in catalog.locales`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())

	latinOff := Default()
	latinOff.Extract.Latin = false
	latinOff.Extract.LatinLocale = "fr"
	assert.NoError(t, latinOff.Validate())
}
