// Package locate finds the game client's installation directories.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("installation not found")

// Default layout of a Bloxstrap-managed client.
const (
	DefaultTexturesSubdir = "PlatformContent/pc/textures"
	DefaultSkySubdir      = "sky"
)

// DefaultVersionsDir returns the Bloxstrap versions directory under
// %LOCALAPPDATA%, or under ~/AppData/Local when that is unset.
func DefaultVersionsDir() string {
	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, "AppData", "Local")
	}
	return filepath.Join(base, "Bloxstrap", "Versions")
}

// Install is one client version directory.
type Install struct {
	Version        string // Absolute path of the version directory
	TexturesSubdir string // Relative to Version (default: DefaultTexturesSubdir)
	SkySubdir      string // Relative to the textures dir (default: DefaultSkySubdir)
}

// TexturesDir returns the texture tree patched by the main payload.
func (i Install) TexturesDir() string {
	sub := i.TexturesSubdir
	if sub == "" {
		sub = DefaultTexturesSubdir
	}
	return filepath.Join(i.Version, filepath.FromSlash(sub))
}

// SkyDir returns the skybox directory inside the texture tree.
func (i Install) SkyDir() string {
	sub := i.SkySubdir
	if sub == "" {
		sub = DefaultSkySubdir
	}
	return filepath.Join(i.TexturesDir(), filepath.FromSlash(sub))
}

// LatestVersion returns the most recently modified subdirectory of
// versionsDir.
func LatestVersion(fs afero.Fs, versionsDir string) (string, error) {
	entries, err := afero.ReadDir(fs, versionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: versions directory missing: %s", ErrNotFound, versionsDir)
		}
		return "", fmt.Errorf("failed to read versions directory: %w", err)
	}

	var latest os.FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if latest == nil || entry.ModTime().After(latest.ModTime()) {
			latest = entry
		}
	}
	if latest == nil {
		return "", fmt.Errorf("%w: no versions in %s", ErrNotFound, versionsDir)
	}
	return filepath.Join(versionsDir, latest.Name()), nil
}

// Find resolves the latest install under versionsDir.
func Find(fs afero.Fs, versionsDir string) (Install, error) {
	version, err := LatestVersion(fs, versionsDir)
	if err != nil {
		return Install{}, err
	}
	return Install{Version: version}, nil
}
