package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/treepatch"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-set> <destination>",
	Short: "Put the files of a backup set back into a patched directory",
	Long: `Restore the files saved in a backup set.

Restoring is itself a patch with the backup set as its source, so the files
it replaces are saved into a new backup set first. Files the original patch
added (rather than replaced) are left in place.

Examples:
  rivalspatch restore backups/20261019_153000 textures/`,
	Args: cobra.ExactArgs(2),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	set, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve backup set: %w", err)
	}
	destination, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	if info, err := os.Stat(set); os.IsNotExist(err) {
		return fmt.Errorf("%w: backup set %s", treepatch.ErrNotFound, args[0])
	} else if err == nil && !info.IsDir() {
		return fmt.Errorf("%w: backup set %s is not a directory", treepatch.ErrIO, args[0])
	}

	con.Accent("Restoring %s into %s", filepath.Base(set), destination)
	result, err := newPatcher(nil).Patch(set, destination)
	if err != nil {
		return patchFailed(result, err)
	}
	printResult(result)
	return nil
}
