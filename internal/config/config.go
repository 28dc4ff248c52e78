// Package config loads arbsweep settings from arbsweep.yaml, ARBSWEEP_*
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// AppName is the config file base name and the environment prefix.
const AppName = "arbsweep"

// Config is the full configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Extract ExtractConfig `mapstructure:"extract"`
	Resolve ResolveConfig `mapstructure:"resolve"`
	Apply   ApplyConfig   `mapstructure:"apply"`
	Report  ReportConfig  `mapstructure:"report"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File adds a rotated file sink when set.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// CatalogConfig locates the ARB files.
type CatalogConfig struct {
	Dir            string   `mapstructure:"dir"`
	FilePattern    string   `mapstructure:"file_pattern"`
	Locales        []string `mapstructure:"locales"`
	SourceLocale   string   `mapstructure:"source_locale"`
	MetadataPrefix string   `mapstructure:"metadata_prefix"`
}

// ExtractConfig configures the scanner.
type ExtractConfig struct {
	Root        string   `mapstructure:"root"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	Denylist    []string `mapstructure:"denylist"`
	MinLength   int      `mapstructure:"min_length"`
	MaxLength   int      `mapstructure:"max_length"`
	WindowLines int      `mapstructure:"window_lines"`
	Workers     int      `mapstructure:"workers"`
	HanLocale   string   `mapstructure:"han_locale"`
	LatinLocale string   `mapstructure:"latin_locale"`
	Latin       bool     `mapstructure:"latin"`
	// Patterns replaces the built-in pattern groups when set.
	Patterns []PatternGroupConfig `mapstructure:"patterns"`
}

// PatternGroupConfig is a user-defined extraction pattern group. An empty
// locale means catalog.source_locale.
type PatternGroupConfig struct {
	Script   string          `mapstructure:"script"`
	Locale   string          `mapstructure:"locale"`
	Patterns []PatternConfig `mapstructure:"patterns"`
}

// PatternConfig is one regex prefix that precedes a quoted literal.
type PatternConfig struct {
	ID      string `mapstructure:"id"`
	Context string `mapstructure:"context"`
	Prefix  string `mapstructure:"prefix"`
}

// ResolveConfig configures matching and key synthesis.
type ResolveConfig struct {
	ReuseThreshold  float64           `mapstructure:"reuse_threshold"`
	ReviewThreshold float64           `mapstructure:"review_threshold"`
	ModuleMarkers   []string          `mapstructure:"module_markers"`
	ContextPrefixes map[string]string `mapstructure:"context_prefixes"`
	Dictionary      map[string]string `mapstructure:"dictionary"`
	MaxKeyTokens    int               `mapstructure:"max_key_tokens"`
}

// ApplyConfig configures source rewriting.
type ApplyConfig struct {
	Accessor          string `mapstructure:"accessor"`
	ImportLine        string `mapstructure:"import_line"`
	BackupDir         string `mapstructure:"backup_dir"`
	MaxSuffixAttempts int    `mapstructure:"max_suffix_attempts"`
}

// ReportConfig locates mapping artifacts.
type ReportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Catalog: CatalogConfig{
			Dir:            "lib/l10n",
			FilePattern:    "app_{locale}.arb",
			Locales:        []string{"zh", "en"},
			SourceLocale:   "zh",
			MetadataPrefix: "@",
		},
		Extract: ExtractConfig{
			Root:    ".",
			Include: []string{"**/*.dart"},
			Exclude: []string{
				"**/*.g.dart", "**/*.freezed.dart", "**/*.gr.dart",
				"**/generated/**", "**/l10n/**", "test/**", "build/**",
				".dart_tool/**", "**/.git/**", ".arbsweep/**",
			},
			Denylist:    []string{},
			MinLength:   1,
			MaxLength:   100,
			WindowLines: 8,
			Workers:     8,
			HanLocale:   "zh",
			LatinLocale: "en",
			Latin:       true,
		},
		Resolve: ResolveConfig{
			ReuseThreshold:  0.9,
			ReviewThreshold: 0.6,
			ModuleMarkers:   []string{"pages", "screens", "features", "widgets"},
			ContextPrefixes: map[string]string{},
			Dictionary:      map[string]string{},
			MaxKeyTokens:    4,
		},
		Apply: ApplyConfig{
			Accessor:          "S.of(context)",
			ImportLine:        "import 'package:app/generated/l10n.dart';",
			BackupDir:         ".arbsweep/backups",
			MaxSuffixAttempts: 5,
		},
		Report: ReportConfig{
			Dir: "l10n_reports",
		},
	}
}

// newViper creates a viper instance reading arbsweep.yaml from the working
// directory and ARBSWEEP_* variables.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// setDefaults registers every key so that environment variables bind to it.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)
	v.SetDefault("log.max_age_days", c.Log.MaxAgeDays)

	v.SetDefault("catalog.dir", c.Catalog.Dir)
	v.SetDefault("catalog.file_pattern", c.Catalog.FilePattern)
	v.SetDefault("catalog.locales", c.Catalog.Locales)
	v.SetDefault("catalog.source_locale", c.Catalog.SourceLocale)
	v.SetDefault("catalog.metadata_prefix", c.Catalog.MetadataPrefix)

	v.SetDefault("extract.root", c.Extract.Root)
	v.SetDefault("extract.include", c.Extract.Include)
	v.SetDefault("extract.exclude", c.Extract.Exclude)
	v.SetDefault("extract.denylist", c.Extract.Denylist)
	v.SetDefault("extract.min_length", c.Extract.MinLength)
	v.SetDefault("extract.max_length", c.Extract.MaxLength)
	v.SetDefault("extract.window_lines", c.Extract.WindowLines)
	v.SetDefault("extract.workers", c.Extract.Workers)
	v.SetDefault("extract.han_locale", c.Extract.HanLocale)
	v.SetDefault("extract.latin_locale", c.Extract.LatinLocale)
	v.SetDefault("extract.latin", c.Extract.Latin)
	v.SetDefault("extract.patterns", []map[string]any{})

	v.SetDefault("resolve.reuse_threshold", c.Resolve.ReuseThreshold)
	v.SetDefault("resolve.review_threshold", c.Resolve.ReviewThreshold)
	v.SetDefault("resolve.module_markers", c.Resolve.ModuleMarkers)
	v.SetDefault("resolve.context_prefixes", c.Resolve.ContextPrefixes)
	v.SetDefault("resolve.dictionary", c.Resolve.Dictionary)
	v.SetDefault("resolve.max_key_tokens", c.Resolve.MaxKeyTokens)

	v.SetDefault("apply.accessor", c.Apply.Accessor)
	v.SetDefault("apply.import_line", c.Apply.ImportLine)
	v.SetDefault("apply.backup_dir", c.Apply.BackupDir)
	v.SetDefault("apply.max_suffix_attempts", c.Apply.MaxSuffixAttempts)

	v.SetDefault("report.dir", c.Report.Dir)
}

// Load reads the configuration. cfgFile overrides the search for
// arbsweep.yaml; a missing default file is not an error. A .env file in the
// working directory is loaded first and never overrides the environment.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := newViper()
	setDefaults(v, Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Catalog.Locales) == 0 {
		errs = append(errs, errors.New("catalog.locales must not be empty"))
	}

	for _, loc := range c.Catalog.Locales {
		if _, err := language.Parse(loc); err != nil {
			errs = append(errs, fmt.Errorf("catalog.locales: invalid locale %q", loc))
		}
	}

	if !contains(c.Catalog.Locales, c.Catalog.SourceLocale) {
		errs = append(errs, fmt.Errorf("catalog.source_locale %q is not in catalog.locales", c.Catalog.SourceLocale))
	}

	if !strings.Contains(c.Catalog.FilePattern, "{locale}") {
		errs = append(errs, fmt.Errorf("catalog.file_pattern %q has no {locale} placeholder", c.Catalog.FilePattern))
	}

	if !contains(c.Catalog.Locales, c.Extract.HanLocale) {
		errs = append(errs, fmt.Errorf("extract.han_locale %q is not in catalog.locales", c.Extract.HanLocale))
	}

	if c.Extract.Latin && !contains(c.Catalog.Locales, c.Extract.LatinLocale) {
		errs = append(errs, fmt.Errorf("extract.latin_locale %q is not in catalog.locales", c.Extract.LatinLocale))
	}

	if c.Extract.MinLength < 1 || c.Extract.MaxLength < c.Extract.MinLength {
		errs = append(errs, fmt.Errorf("extract lengths must satisfy 1 <= min_length (%d) <= max_length (%d)",
			c.Extract.MinLength, c.Extract.MaxLength))
	}

	if c.Extract.WindowLines < 1 {
		errs = append(errs, errors.New("extract.window_lines must be at least 1"))
	}

	for i, g := range c.Extract.Patterns {
		if g.Script != "han" && g.Script != "latin" {
			errs = append(errs, fmt.Errorf("extract.patterns[%d]: script %q must be han or latin", i, g.Script))
		}

		if g.Locale != "" && !contains(c.Catalog.Locales, g.Locale) {
			errs = append(errs, fmt.Errorf("extract.patterns[%d]: locale %q is not in catalog.locales", i, g.Locale))
		}

		if len(g.Patterns) == 0 {
			errs = append(errs, fmt.Errorf("extract.patterns[%d]: group has no patterns", i))
		}

		for j, p := range g.Patterns {
			if p.ID == "" || p.Prefix == "" {
				errs = append(errs, fmt.Errorf("extract.patterns[%d].patterns[%d]: id and prefix are required", i, j))
			}
		}
	}

	r := c.Resolve
	if r.ReviewThreshold <= 0 || r.ReviewThreshold > r.ReuseThreshold || r.ReuseThreshold > 1 {
		errs = append(errs, fmt.Errorf("resolve thresholds must satisfy 0 < review (%.2f) <= reuse (%.2f) <= 1",
			r.ReviewThreshold, r.ReuseThreshold))
	}

	if strings.TrimSpace(c.Apply.Accessor) == "" {
		errs = append(errs, errors.New("apply.accessor must not be empty"))
	}

	if c.Apply.MaxSuffixAttempts < 1 {
		errs = append(errs, errors.New("apply.max_suffix_attempts must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
