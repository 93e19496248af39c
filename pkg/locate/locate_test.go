package locate

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestVersion(t *testing.T) {
	fs := afero.NewMemMapFs()
	versions := "/appdata/Bloxstrap/Versions"

	_, err := LatestVersion(fs, versions)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.MkdirAll(versions, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(versions, "State.json"), nil, 0o644))
	_, err = LatestVersion(fs, versions)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"version-aaa", "version-ccc", "version-bbb"} {
		dir := filepath.Join(versions, name)
		require.NoError(t, fs.MkdirAll(dir, 0o755))
		stamp := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, fs.Chtimes(dir, stamp, stamp))
	}

	latest, err := LatestVersion(fs, versions)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(versions, "version-bbb"), latest)
}

func TestInstallPaths(t *testing.T) {
	install := Install{Version: "/v/version-1"}
	assert.Equal(t, filepath.Join("/v/version-1", "PlatformContent", "pc", "textures"), install.TexturesDir())
	assert.Equal(t, filepath.Join("/v/version-1", "PlatformContent", "pc", "textures", "sky"), install.SkyDir())

	custom := Install{Version: "/v/x", TexturesSubdir: "content/tex", SkySubdir: "skies/day"}
	assert.Equal(t, filepath.Join("/v/x", "content", "tex", "skies", "day"), custom.SkyDir())
}

func TestDefaultVersionsDir(t *testing.T) {
	t.Setenv("LOCALAPPDATA", "/local")
	assert.Equal(t, filepath.Join("/local", "Bloxstrap", "Versions"), DefaultVersionsDir())

	t.Setenv("LOCALAPPDATA", "")
	t.Setenv("HOME", "/home/player")
	t.Setenv("USERPROFILE", "/home/player")
	assert.Equal(t, filepath.Join("/home/player", "AppData", "Local", "Bloxstrap", "Versions"), DefaultVersionsDir())
}
