package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/rivalspatch/pkg/locate"
	"github.com/rivalspatch/pkg/payload"
	"github.com/rivalspatch/pkg/treepatch"
)

var osFs = afero.NewOsFs()

// newPatcher builds a patcher from the config, the --backups flag and any
// payload-specific exclude patterns.
func newPatcher(exclude []string) *treepatch.Patcher {
	backupRoot := cfg.Patch.BackupsDir
	if backupsFlag != "" {
		backupRoot = backupsFlag
	}

	patterns := append([]string{}, cfg.Patch.Exclude...)
	patterns = append(patterns, exclude...)

	return treepatch.NewPatcher(treepatch.Options{
		Fs:         osFs,
		BackupRoot: backupRoot,
		Exclude:    patterns,
		Logger:     logger,
	})
}

// backupRootFor returns where backup sets for destination are kept.
func backupRootFor(destination string) string {
	if backupsFlag != "" {
		return backupsFlag
	}
	if cfg.Patch.BackupsDir != "" {
		return cfg.Patch.BackupsDir
	}
	return treepatch.DefaultBackupRoot(destination)
}

// source is a directory tree ready to be patched in.
type source struct {
	root    string
	exclude []string
	ext     *payload.Extraction
}

func (s *source) Close() error {
	return s.ext.Close()
}

// openSource accepts a directory or a zip payload. Zips are extracted to a
// temporary directory that Close removes.
func openSource(path string) (*source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", treepatch.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", treepatch.ErrIO, err)
	}
	if info.IsDir() {
		return &source{root: abs}, nil
	}
	if !strings.EqualFold(filepath.Ext(abs), ".zip") {
		return nil, fmt.Errorf("%w: %s is neither a directory nor a .zip payload", payload.ErrInvalidArchive, path)
	}

	con.Neon("Extracting payload...")
	ext, err := payload.Extract(abs, payload.ExtractOptions{Fs: osFs, Logger: logger})
	if err != nil {
		return nil, err
	}
	return &source{root: ext.Root, exclude: ext.Exclude, ext: ext}, nil
}

// findInstall returns the install rooted at version, or the latest version
// under the configured versions directory when version is empty.
func findInstall(version string) (locate.Install, error) {
	install := locate.Install{
		Version:        version,
		TexturesSubdir: cfg.Install.TexturesSubdir,
		SkySubdir:      cfg.Install.SkySubdir,
	}
	if version != "" {
		abs, err := filepath.Abs(version)
		if err != nil {
			return install, fmt.Errorf("failed to resolve install path: %w", err)
		}
		if _, err := os.Stat(abs); os.IsNotExist(err) {
			return install, fmt.Errorf("%w: %s", locate.ErrNotFound, version)
		}
		install.Version = abs
		return install, nil
	}

	latest, err := locate.Find(osFs, cfg.Install.VersionsDir)
	if err != nil {
		return install, err
	}
	install.Version = latest.Version
	return install, nil
}

func printResult(result treepatch.Result) {
	con.Neon("Patch complete: %d files copied, %d overwritten.", result.FilesCopied, result.FilesOverwritten)
	if result.BackupPath != "" {
		con.Warn("Backup stored at: %s", result.BackupPath)
	} else {
		con.Info("Nothing was overwritten, no backup needed.")
	}
}

// patchFailed wraps a copy-pass failure with the partial result.
func patchFailed(result treepatch.Result, err error) error {
	if result.BackupPath != "" {
		con.Warn("%d files were copied before the failure; originals are backed up at: %s",
			result.FilesCopied, result.BackupPath)
	}
	return err
}
