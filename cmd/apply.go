package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/payload"
)

var (
	applyPayload string
	applyInstall string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Patch the latest game version with the texture payload",
	Long: `Find the game and the texture payload, then patch the texture tree.

Without flags the newest version directory under install.versionsDir is
patched, using the payload found in payload.dir:
  1. payload.defaultName, if present
  2. otherwise the first zip whose name contains one of payload.keywords
  3. otherwise the first zip

Examples:
  # Patch using the configured locations
  rivalspatch apply

  # Use a specific payload and version directory
  rivalspatch apply -p my-textures.zip -i "%LOCALAPPDATA%/Bloxstrap/Versions/version-x"`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVarP(&applyPayload, "payload", "p", "",
		"texture payload zip or directory (default: search payload.dir)")
	applyCmd.Flags().StringVarP(&applyInstall, "install", "i", "",
		"game version directory (default: latest under install.versionsDir)")
}

func runApply(cmd *cobra.Command, args []string) error {
	install, err := findInstall(applyInstall)
	if err != nil {
		return err
	}
	con.Neon("Using version: %s", install.Version)

	archive := applyPayload
	if archive == "" {
		archive, err = payload.Locate(osFs, cfg.Payload.Dir, cfg.Payload.DefaultName, cfg.Payload.Keywords)
		if err != nil {
			return err
		}
	}
	con.Accent("Found texture payload: %s", archive)

	src, err := openSource(archive)
	if err != nil {
		return err
	}
	defer src.Close()

	result, err := newPatcher(src.exclude).Patch(src.root, install.TexturesDir())
	if err != nil {
		return patchFailed(result, err)
	}
	printResult(result)
	con.Accent("\nPatch applied successfully!")
	return nil
}
