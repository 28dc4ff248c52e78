package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arbsweep/internal/report"
)

func (a *app) newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain the ARB catalog files",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "sort",
			Short: "Rewrite every locale file in canonical key order",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				cat, err := a.openCatalog()
				if err != nil {
					return invalid(err)
				}

				if err := cat.PersistAll(); err != nil {
					return err
				}

				a.log.Info("Catalog sorted", zap.Strings("locales", cat.Locales()), zap.Int("keys", cat.Len()))
				fmt.Fprintf(a.out, "Sorted %d keys in %d locales\n", cat.Len(), len(cat.Locales()))

				return nil
			},
		},
		a.newCatalogCheckCommand(),
	)

	return cmd
}

func (a *app) newCatalogCheckCommand() *cobra.Command {
	var unused, duplicates bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "List keys missing from some locale",
		Long: `List keys missing from some locale. Missing keys exit with status 2.

--unused also scans the source tree for accessor references and lists keys
nothing uses. --duplicates lists source locale texts carried by several keys.
Both are reports only and do not change the exit status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.openCatalog()
			if err != nil {
				return invalid(err)
			}

			gaps := cat.Missing()
			fmt.Fprint(a.out, report.Gaps(gaps))

			if unused {
				scanner, err := a.newScanner(a.cfg.Extract, nil)
				if err != nil {
					return invalid(err)
				}

				usage, err := scanner.KeyUsage(cmd.Context(), a.cfg.Extract.Root, a.cfg.Apply.Accessor)
				if err != nil {
					return err
				}

				keys := cat.Unused(usage)
				a.log.Info("Key usage scanned", zap.Int("referenced", len(usage)), zap.Int("unused", len(keys)))
				fmt.Fprint(a.out, report.Unused(keys))
			}

			if duplicates {
				locale := a.cfg.Catalog.SourceLocale
				fmt.Fprint(a.out, report.Duplicates(locale, cat.Duplicates(locale)))
			}

			if len(gaps) > 0 {
				return &exitError{code: ExitPartial}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&unused, "unused", false, "list keys no source file references")
	cmd.Flags().BoolVar(&duplicates, "duplicates", false, "list source texts shared by several keys")

	return cmd
}
