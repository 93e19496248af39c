package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/treepatch"
)

var planCmd = &cobra.Command{
	Use:   "plan <source> <destination>",
	Short: "List the files a patch would create and overwrite",
	Long: `Run only the discovery pass of a patch and print its result.

Nothing is written: no backup set is created and the destination is left
as it is. The source may be a directory or a .zip payload.

Examples:
  rivalspatch plan dark-textures.zip textures/`,
	Args: cobra.ExactArgs(2),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	src, err := openSource(args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	destination, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	plan, err := newPatcher(src.exclude).Discover(src.root, destination)
	if err != nil {
		return err
	}
	printPlan(plan, backupRootFor(destination))
	return nil
}

func printPlan(plan *treepatch.Plan, backupRoot string) {
	con.Accent("Source:      %s", plan.SourceRoot)
	con.Accent("Destination: %s", plan.DestinationRoot)
	con.Plain("")

	for _, f := range plan.ToCreate {
		con.Neon("  new        %s", f.Rel)
	}
	for _, f := range plan.ToOverwrite {
		con.Warn("  overwrite  %s", f.Rel)
	}

	con.Plain("")
	con.Plain("%d files to copy, %d to overwrite.", plan.Len(), len(plan.ToOverwrite))
	if len(plan.ToOverwrite) > 0 {
		con.Info("Overwritten files would be backed up under %s", backupRoot)
	}
}
