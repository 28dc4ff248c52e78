package cmd

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arbsweep/internal/apply"
	"arbsweep/internal/artifact"
	"arbsweep/internal/backup"
	"arbsweep/internal/report"
)

type applyFlags struct {
	latest bool
	dryRun bool
	yes    bool
}

func (a *app) newApplyCommand() *cobra.Command {
	f := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply [file]",
		Short: "Rewrite approved entries of a mapping artifact",
		Long: `Validate a mapping artifact against the catalog and the current sources,
then rewrite every approved literal to its catalog accessor and add new keys
to all locale files.

Each rewritten file is backed up first and can be undone with restore.`,
		Example: `  arbsweep apply l10n_reports/20260101-120000_mapping.yaml
  arbsweep apply --latest --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runApply(cmd, args, f)
		},
	}

	cmd.Flags().BoolVar(&f.latest, "latest", false, "use the newest artifact in the report directory")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "plan the rewrite without writing anything")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func (a *app) artifactPath(args []string, latest bool) (string, error) {
	switch {
	case len(args) == 1 && latest:
		return "", errors.New("give either an artifact path or --latest, not both")
	case len(args) == 1:
		return args[0], nil
	case latest:
		return artifact.Latest(a.fs, a.cfg.Report.Dir)
	default:
		return "", errors.New("no artifact given (pass a path or --latest)")
	}
}

func (a *app) runApply(cmd *cobra.Command, args []string, f *applyFlags) error {
	path, err := a.artifactPath(args, f.latest)
	if err != nil {
		return invalid(err)
	}

	cat, err := a.openCatalog()
	if err != nil {
		return invalid(err)
	}

	file, err := artifact.Load(a.fs, path)
	if err != nil {
		var ve *artifact.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprint(a.errOut, report.Diagnostics(ve.Diagnostics))
		}

		return invalid(err)
	}

	ac := a.cfg.Apply

	diags := artifact.Validate(file, artifact.Context{
		Catalog:    cat,
		Fs:         a.fs,
		Root:       file.Root,
		Accessor:   ac.Accessor,
		ImportLine: ac.ImportLine,
	})
	fmt.Fprint(a.errOut, report.Diagnostics(diags))

	if !diags.IsValid() {
		return invalid(fmt.Errorf("%s failed validation with %d errors", path, len(diags.Errors)))
	}

	changes := file.Changes()
	if len(changes) == 0 && len(file.Stale()) == 0 {
		fmt.Fprintf(a.out, "No approved entries in %s\n", path)
		return nil
	}

	fmt.Fprint(a.out, report.Preview(changes, ac.Accessor))

	if !f.dryRun && !f.yes && len(changes) > 0 {
		ok, err := a.confirm(
			fmt.Sprintf("Apply %d changes?", len(changes)),
			"Source files are backed up before they are rewritten.",
		)
		if err != nil {
			return invalid(err)
		}

		if !ok {
			return invalid(errors.New("apply cancelled"))
		}
	}

	files := lo.Uniq(lo.Map(changes, func(c artifact.Change, _ int) string { return c.Target().File }))
	bar := newProgressBar(a.errOut, len(files), "Applying")

	applier := apply.New(a.fs, cat, apply.Options{
		Root:              file.Root,
		Accessor:          ac.Accessor,
		ImportLine:        ac.ImportLine,
		MaxSuffixAttempts: ac.MaxSuffixAttempts,
		DryRun:            f.dryRun,
		Backups:           backup.NewStore(a.fs, ac.BackupDir),
		Logger:            a.log.Named("apply"),
		OnFile:            func(string) { _ = bar.Add(1) },
	})

	sum, err := applier.ApplyApproved(cmd.Context(), file)
	_ = bar.Finish()

	if sum != nil {
		fmt.Fprint(a.out, report.Summary(sum))
	}

	if err != nil {
		return &exitError{code: ExitPartial, err: err}
	}

	for _, e := range sum.Errors() {
		a.log.Warn("Entry not applied", zap.Error(e))
	}

	if code := sum.ExitCode(); code != apply.ExitOK {
		return &exitError{code: code}
	}

	return nil
}
