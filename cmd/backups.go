package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/treepatch"
)

var backupsCmd = &cobra.Command{
	Use:   "backups <destination>",
	Short: "List the backup sets kept for a patched directory",
	Long: `List the backup sets created when <destination> was patched.

Each set is named after the time of the patch and mirrors the layout of
the files it replaced. Restore one with "rivalspatch restore".

Examples:
  rivalspatch backups textures/`,
	Args: cobra.ExactArgs(1),
	RunE: runBackups,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
}

func runBackups(cmd *cobra.Command, args []string) error {
	destination, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	root := backupRootFor(destination)
	sets, err := treepatch.ListBackups(osFs, root)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		con.Info("No backups in %s", root)
		return nil
	}

	con.Accent("Backups in %s:", root)
	for i, set := range sets {
		con.Item(i+1, set.Name, fmt.Sprintf("%d files, %s", set.Files, set.Created.Format("2006-01-02 15:04:05")))
	}
	return nil
}
