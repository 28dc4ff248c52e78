package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"arbsweep/internal/artifact"
	"arbsweep/internal/catalog"
	"arbsweep/internal/config"
	"arbsweep/internal/extract"
	"arbsweep/internal/report"
	"arbsweep/internal/resolve"
)

type extractFlags struct {
	root             string
	latin            bool
	workers          int
	autoApproveReuse bool
}

func addExtractFlags(flags *pflag.FlagSet, f *extractFlags) {
	flags.StringVar(&f.root, "root", "", "source root to scan (overrides extract.root)")
	flags.BoolVar(&f.latin, "latin", true, "also extract capitalized Latin strings (overrides extract.latin)")
	flags.IntVar(&f.workers, "workers", 0, "parallel file readers (overrides extract.workers)")
	flags.BoolVar(&f.autoApproveReuse, "auto-approve-reuse", false, "pre-approve exact reuse entries")
}

func (a *app) newExtractCommand() *cobra.Command {
	f := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Scan sources and write a mapping artifact",
		Long: `Scan the source tree for hardcoded UI strings, match them against the
catalog and write a mapping artifact for review.

Nothing is modified. Approve entries in the artifact, then run apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runExtract(cmd, f)
		},
	}

	addExtractFlags(cmd.Flags(), f)

	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, f *extractFlags) error {
	cfg := a.cfg.Extract

	if f.root != "" {
		cfg.Root = f.root
	}

	if cmd.Flags().Changed("latin") {
		cfg.Latin = f.latin
	}

	if f.workers > 0 {
		cfg.Workers = f.workers
	}

	cat, err := a.openCatalog()
	if err != nil {
		return invalid(err)
	}

	var bar *progressbar.ProgressBar

	scanner, err := a.newScanner(cfg, func(string) {
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if err != nil {
		return invalid(err)
	}

	files, err := scanner.Files(cfg.Root)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return invalid(fmt.Errorf("%w under %s", extract.ErrNoFiles, cfg.Root))
	}

	bar = newProgressBar(a.errOut, len(files), "Scanning")

	cands, err := extract.Collect(scanner.Scan(cmd.Context(), cfg.Root))
	_ = bar.Finish()

	if err != nil {
		return err
	}

	a.log.Info("Scan finished", zap.Int("files", len(files)), zap.Int("candidates", len(cands)))

	rc := a.cfg.Resolve
	resolver := resolve.New(cat, nil, resolve.Options{
		ReuseThreshold:  rc.ReuseThreshold,
		ReviewThreshold: rc.ReviewThreshold,
		SourceLocale:    a.cfg.Catalog.SourceLocale,
		Synth: resolve.SynthOptions{
			ModuleMarkers:   rc.ModuleMarkers,
			ContextPrefixes: rc.ContextPrefixes,
			MaxTokens:       rc.MaxKeyTokens,
			Dictionary:      resolve.NewDictionary(rc.Dictionary),
		},
		Logger: a.log.Named("resolve"),
	})

	file := artifact.Build(resolver.ResolveAll(cands), artifact.BuildOptions{
		Root:             cfg.Root,
		Locales:          cat.Locales(),
		AutoApproveReuse: f.autoApproveReuse,
	})

	if len(cands) == 0 {
		fmt.Fprint(a.out, report.ExtractStats(file, len(files), ""))
		return nil
	}

	path, err := artifact.Write(a.fs, a.cfg.Report.Dir, file)
	if err != nil {
		return err
	}

	fmt.Fprint(a.out, report.ExtractStats(file, len(files), path))

	return nil
}

// newScanner builds a scanner from cfg. Pattern groups from extract.patterns
// replace the built-in Flutter set; a group without a locale extracts into
// the source locale.
func (a *app) newScanner(cfg config.ExtractConfig, onFile func(string)) (*extract.Scanner, error) {
	set := extract.DefaultPatternSet(extract.GroupOptions{
		HanLocale:   cfg.HanLocale,
		LatinLocale: cfg.LatinLocale,
		Latin:       cfg.Latin,
		MinLength:   cfg.MinLength,
	})

	if len(cfg.Patterns) > 0 {
		specs := lo.Map(cfg.Patterns, func(g config.PatternGroupConfig, _ int) extract.GroupSpec {
			return extract.GroupSpec{
				Script: g.Script,
				Locale: lo.CoalesceOrEmpty(g.Locale, a.cfg.Catalog.SourceLocale),
				Patterns: lo.Map(g.Patterns, func(p config.PatternConfig, _ int) extract.PatternSpec {
					return extract.PatternSpec{ID: p.ID, ContextTag: p.Context, Prefix: p.Prefix}
				}),
			}
		})

		var err error
		if set, err = extract.CompilePatternSet(specs); err != nil {
			return nil, fmt.Errorf("extract.patterns: %w", err)
		}

		for i := range set.Groups {
			set.Groups[i].MinLength = max(set.Groups[i].MinLength, cfg.MinLength)
		}

		a.log.Debug("Using configured pattern groups", zap.Int("groups", len(set.Groups)))
	}

	return extract.NewScanner(a.fs, extract.Options{
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		Denylist:    cfg.Denylist,
		MaxLength:   cfg.MaxLength,
		WindowLines: cfg.WindowLines,
		Workers:     cfg.Workers,
		Patterns:    set,
		Logger:      a.log.Named("extract"),
		OnFile:      onFile,
	})
}

func (a *app) openCatalog() (*catalog.Catalog, error) {
	cc := a.cfg.Catalog

	return catalog.Load(a.fs, catalog.Options{
		Dir:            cc.Dir,
		FilePattern:    cc.FilePattern,
		Locales:        cc.Locales,
		MetadataPrefix: cc.MetadataPrefix,
	})
}
