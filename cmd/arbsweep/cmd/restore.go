package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arbsweep/internal/backup"
	"arbsweep/internal/report"
)

func (a *app) newRestoreCommand() *cobra.Command {
	var list, del bool

	cmd := &cobra.Command{
		Use:   "restore [id]",
		Short: "List, restore or delete backups",
		Long: `Every file rewritten by apply is backed up first. Without arguments, or
with --list, restore lists the backups newest first. With an ID it verifies
the backup and writes it back over the source file. With --delete the backup
is removed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := backup.NewStore(a.fs, a.cfg.Apply.BackupDir)

			if del && len(args) == 0 {
				return invalid(errors.New("--delete needs a backup id"))
			}

			if list || len(args) == 0 {
				records, err := store.List()
				if err != nil {
					return err
				}

				fmt.Fprint(a.out, report.Backups(records))

				return nil
			}

			if del {
				if err := store.Delete(args[0]); err != nil {
					return invalid(err)
				}

				a.log.Info("Backup deleted", zap.String("id", args[0]))
				fmt.Fprintf(a.out, "Deleted backup %s\n", args[0])

				return nil
			}

			rec, err := store.Restore(args[0])
			if err != nil {
				return invalid(err)
			}

			a.log.Info("Backup restored", zap.String("id", rec.ID), zap.String("source", rec.Source))
			fmt.Fprintf(a.out, "Restored %s from backup %s\n", rec.Source, rec.ID)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list backups")
	cmd.Flags().BoolVar(&del, "delete", false, "delete the backup with the given id")
	cmd.MarkFlagsMutuallyExclusive("list", "delete")

	return cmd
}
