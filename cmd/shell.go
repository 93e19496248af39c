package cmd

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/locate"
	"github.com/rivalspatch/pkg/payload"
	"github.com/rivalspatch/pkg/shell"
	"github.com/rivalspatch/pkg/treepatch"
)

func runShell(cmd *cobra.Command, args []string) error {
	auth, err := newAuthenticator()
	if err != nil {
		return err
	}

	sh := shell.New(shell.Env{
		Console:     con,
		Auth:        auth,
		FindInstall: func() (locate.Install, error) { return findInstall("") },
		FindPayload: func() (string, error) {
			return payload.Locate(osFs, cfg.Payload.Dir, cfg.Payload.DefaultName, cfg.Payload.Keywords)
		},
		SkyArchive: filepath.Join(cfg.Payload.Dir, cfg.Payload.SkyArchive),
		Extract: func(archivePath string) (*payload.Extraction, error) {
			return payload.Extract(archivePath, payload.ExtractOptions{Fs: osFs, Logger: logger})
		},
		Patch: func(src, dst string, exclude []string) (treepatch.Result, error) {
			return newPatcher(exclude).Patch(src, dst)
		},
		Fs: osFs,
	})

	if err := sh.Run(); err != nil {
		if errors.Is(err, io.EOF) {
			con.Error("\nInterrupted by user.")
			return nil
		}
		return err
	}
	return nil
}
