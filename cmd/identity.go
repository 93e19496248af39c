package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/identity"
)

var identityReset bool

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Show or forget the verified user",
	Long: `Show the user verified by the interactive session.

The name is kept in identity.lockFile; with --reset it is removed and the
next interactive session asks again.`,
	Args: cobra.NoArgs,
	RunE: runIdentity,
}

func init() {
	rootCmd.AddCommand(identityCmd)

	identityCmd.Flags().BoolVar(&identityReset, "reset", false,
		"forget the verified user")
}

func newAuthenticator() (*identity.Authenticator, error) {
	auth := identity.NewAuthenticator(&identity.FileStore{Fs: osFs, Path: cfg.Identity.LockFile})
	if err := auth.Init(); err != nil {
		return nil, err
	}
	return auth, nil
}

func runIdentity(cmd *cobra.Command, args []string) error {
	auth, err := newAuthenticator()
	if err != nil {
		return err
	}

	if identityReset {
		if err := auth.Reset(); err != nil {
			return err
		}
		con.Warn("Verified user cleared.")
		return nil
	}

	if auth.State() == identity.Verified {
		con.Neon("User verified: %s", auth.Name())
	} else {
		con.Info("No verified user (%s).", auth.State())
	}
	return nil
}
