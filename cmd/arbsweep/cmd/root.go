// Package cmd holds the arbsweep command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arbsweep/internal/config"
	"arbsweep/internal/logger"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitPartial = 2
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}

	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func invalid(err error) error { return &exitError{code: ExitInvalid, err: err} }

// app is the state shared by all commands of one invocation.
type app struct {
	cfgFile string
	verbose bool

	cfg *config.Config
	log *logger.Logger
	fs  afero.Fs

	out    io.Writer
	errOut io.Writer

	// confirm asks the user a yes/no question.
	confirm func(title, description string) (bool, error)
}

// NewRootCommand builds the command tree over fs. The logger of the returned
// tree is not closed; use Execute for a full run.
func NewRootCommand(fs afero.Fs, out, errOut io.Writer) *cobra.Command {
	return newRootCommand(&app{fs: fs, out: out, errOut: errOut, confirm: confirmPrompt})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "arbsweep",
		Short:         "Move hardcoded UI strings into ARB catalogs",
		Long:          `arbsweep finds hardcoded UI strings, maps them onto ARB catalog keys and rewrites the sources once the mapping is approved.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			return a.setup()
		},
	}

	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./arbsweep.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.newExtractCommand(),
		a.newApplyCommand(),
		a.newRestoreCommand(),
		a.newCatalogCommand(),
		newVersionCommand(),
	)

	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return invalid(err)
	}

	if a.verbose {
		cfg.Log.Level = "debug"
	}

	l, err := logger.NewWithWriter(cfg.Log, a.errOut)
	if err != nil {
		return invalid(fmt.Errorf("failed to initialize logger: %w", err))
	}

	a.cfg = cfg
	a.log = l

	a.log.Debug("Configuration loaded", zap.String("config", a.cfgFile), zap.Strings("locales", cfg.Catalog.Locales))

	return nil
}

// close flushes the logger. Cobra skips post-run hooks when a command fails,
// so this runs after Execute returns.
func (a *app) close() {
	if a.log != nil {
		_ = a.log.Close()
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	a := &app{fs: afero.NewOsFs(), out: os.Stdout, errOut: os.Stderr, confirm: confirmPrompt}
	defer a.close()

	return exitCode(newRootCommand(a).ExecuteContext(ctx), os.Stderr)
}

func exitCode(err error, w io.Writer) int {
	if err == nil {
		return ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(w, "Error:", ee.err)
		}

		return ee.code
	}

	fmt.Fprintln(w, "Error:", err)

	return ExitInvalid
}
