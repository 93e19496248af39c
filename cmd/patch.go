package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	patchDryRun  bool
	patchExclude []string
)

var patchCmd = &cobra.Command{
	Use:   "patch <source> <destination>",
	Short: "Copy a source tree over a destination, backing up replaced files",
	Long: `Copy every file of a source tree into a destination directory.

The source is either a directory or a .zip payload. A zip holding a single
top-level directory is patched from inside that directory, and a .patchignore
file at the payload root lists files to leave out.

Every destination file that is about to be overwritten is first copied into
a new backup set; if that backup fails, the destination is not touched.

Examples:
  # Patch a texture folder from an extracted pack
  rivalspatch patch dark-textures/ "%LOCALAPPDATA%/Bloxstrap/Versions/version-x/PlatformContent/pc/textures"

  # Patch straight from the zip and keep backups elsewhere
  rivalspatch patch dark-textures.zip textures/ -b D:/texture-backups

  # Show what would happen without changing anything
  rivalspatch patch dark-textures.zip textures/ -n`,
	Args: cobra.ExactArgs(2),
	RunE: runPatch,
}

func init() {
	rootCmd.AddCommand(patchCmd)

	patchCmd.Flags().BoolVarP(&patchDryRun, "dry-run", "n", false,
		"only list the files that would be created and overwritten")
	patchCmd.Flags().StringArrayVarP(&patchExclude, "exclude", "x", nil,
		"gitignore-style pattern of source files to skip (repeatable)")
}

func runPatch(cmd *cobra.Command, args []string) error {
	src, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	destination, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	patcher := newPatcher(append(src.exclude, patchExclude...))
	plan, err := patcher.Discover(src.root, destination)
	if err != nil {
		return err
	}

	if patchDryRun {
		printPlan(plan, backupRootFor(destination))
		return nil
	}

	con.Accent("Patching %s", destination)
	result, err := patcher.Apply(plan)
	if err != nil {
		return patchFailed(result, err)
	}
	printResult(result)
	return nil
}
