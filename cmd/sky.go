package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/payload"
)

var (
	skyArchive string
	skyInstall string
)

var skyCmd = &cobra.Command{
	Use:   "sky [name]",
	Short: "List the skyboxes in the skybox pack or apply one",
	Long: `Apply a skybox from the skybox pack to the game's sky texture directory.

The skybox pack is a zip whose top-level directories are skyboxes. Without
a name the available skyboxes are listed with their file counts.

Examples:
  # List skyboxes
  rivalspatch sky

  # Apply the "Night" skybox
  rivalspatch sky Night`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSky,
}

func init() {
	rootCmd.AddCommand(skyCmd)

	skyCmd.Flags().StringVarP(&skyArchive, "archive", "a", "",
		"skybox pack zip (default: payload.skyArchive in payload.dir)")
	skyCmd.Flags().StringVarP(&skyInstall, "install", "i", "",
		"game version directory (default: latest under install.versionsDir)")
}

func runSky(cmd *cobra.Command, args []string) error {
	archive := skyArchive
	if archive == "" {
		archive = filepath.Join(cfg.Payload.Dir, cfg.Payload.SkyArchive)
	}

	con.Neon("Extracting skyboxes...")
	ext, err := payload.Extract(archive, payload.ExtractOptions{Fs: osFs, Logger: logger})
	if err != nil {
		return err
	}
	defer ext.Close()

	trees, err := payload.Subtrees(osFs, ext.Dir)
	if err != nil {
		return err
	}
	if len(trees) == 0 {
		return fmt.Errorf("%w: no skyboxes inside %s", payload.ErrEmptyPayload, archive)
	}

	if len(args) == 0 {
		con.Accent("Available skyboxes:")
		for i, t := range trees {
			con.Item(i+1, t.Name, fmt.Sprintf("%d files", t.Files))
		}
		return nil
	}

	selected, ok := payload.Find(trees, args[0])
	if !ok {
		return fmt.Errorf("%w: skybox %q is not in %s", payload.ErrNotFound, args[0], archive)
	}

	install, err := findInstall(skyInstall)
	if err != nil {
		return err
	}

	con.Neon("Applying skybox: %s", selected.Name)
	result, err := newPatcher(nil).Patch(selected.Path, install.SkyDir())
	if err != nil {
		return patchFailed(result, err)
	}
	printResult(result)
	return nil
}
