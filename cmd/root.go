package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rivalspatch/pkg/config"
	"github.com/rivalspatch/pkg/console"
	"github.com/rivalspatch/pkg/shell"
)

var (
	configPath  string
	verbose     bool
	noColor     bool
	backupsFlag string

	cfg    *config.Config
	logger zerolog.Logger
	con    *console.Console
)

var rootCmd = &cobra.Command{
	Use:   "rivalspatch",
	Short: "Patch game textures from a zip payload, backing up what gets replaced",
	Long: `rivalspatch copies texture packs into the game client's installation and
keeps a timestamped backup of every file it overwrites.

Running rivalspatch without a command starts the interactive session:
  - Verify the user
  - Patch the texture tree from the payload zip
  - Optionally apply a skybox from the skybox pack

Backups are stored in a "backups" directory next to the patched directory,
one subdirectory per run (e.g. backups/20261019_153000).`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runShell,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if con != nil {
			con.Error("%s", shell.Describe(err))
		} else {
			fmt.Fprintln(os.Stderr, shell.Describe(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: ./rivalspatch.yaml or ~/.config/rivalspatch/rivalspatch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"print verbose progress information")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().StringVarP(&backupsFlag, "backups", "b", "",
		"directory for backup sets (default: backups/ next to the destination)")
}

// setup loads .env, the config file and the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()

	con = console.New(os.Stdin, os.Stdout, noColor)
	return nil
}
