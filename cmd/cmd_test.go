package cmd

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalspatch/pkg/locate"
	"github.com/rivalspatch/pkg/payload"
	"github.com/rivalspatch/pkg/treepatch"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	patchDryRun, patchExclude, backupsFlag = false, nil, ""
	applyPayload, applyInstall = "", ""
	skyArchive, skyInstall = "", ""
	identityReset = false
	rootCmd.SetArgs(append(args, "--no-color"))
	return rootCmd.Execute()
}

func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("USERPROFILE", base)
	t.Setenv("LOCALAPPDATA", filepath.Join(base, "local"))
	return base
}

func write(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestPatchAndRestoreCommands(t *testing.T) {
	base := isolate(t)
	src := filepath.Join(base, "pack")
	dst := filepath.Join(base, "game", "textures")
	write(t, filepath.Join(src, "a.png"), "new a")
	write(t, filepath.Join(src, "sub", "b.png"), "new b")
	write(t, filepath.Join(dst, "a.png"), "old a")

	require.NoError(t, run(t, "plan", src, dst))
	assert.Equal(t, "old a", read(t, filepath.Join(dst, "a.png")))

	require.NoError(t, run(t, "patch", src, dst))
	assert.Equal(t, "new a", read(t, filepath.Join(dst, "a.png")))
	assert.Equal(t, "new b", read(t, filepath.Join(dst, "sub", "b.png")))

	sets, err := treepatch.ListBackups(osFs, filepath.Join(base, "game", "backups"))
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 1, sets[0].Files)

	require.NoError(t, run(t, "backups", dst))
	require.NoError(t, run(t, "restore", sets[0].Path, dst))
	assert.Equal(t, "old a", read(t, filepath.Join(dst, "a.png")))
}

func TestPatchCommandFromZip(t *testing.T) {
	base := isolate(t)
	archive := filepath.Join(base, "pack.zip")
	dst := filepath.Join(base, "textures")

	writeZip(t, archive, map[string]string{"pack/a.png": "a", "pack/notes.txt": "skip me"})

	require.NoError(t, run(t, "patch", archive, dst, "-x", "*.txt"))
	assert.Equal(t, "a", read(t, filepath.Join(dst, "a.png")))
	_, err := os.Stat(filepath.Join(dst, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestPatchCommandMissingSource(t *testing.T) {
	base := isolate(t)

	err := run(t, "patch", filepath.Join(base, "nope"), filepath.Join(base, "dst"))
	assert.ErrorIs(t, err, treepatch.ErrNotFound)
}

func TestPatchCommandDryRun(t *testing.T) {
	base := isolate(t)
	src := filepath.Join(base, "pack")
	dst := filepath.Join(base, "textures")
	write(t, filepath.Join(src, "a.png"), "a")

	require.NoError(t, run(t, "patch", src, dst, "--dry-run"))
	_, err := os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyCommand(t *testing.T) {
	base := isolate(t)
	version := filepath.Join(base, "versions", "version-7")
	textures := filepath.Join(version, "PlatformContent", "pc", "textures")
	archive := filepath.Join(base, "my-textures.zip")
	write(t, filepath.Join(textures, "brick.dds"), "old brick")
	writeZip(t, archive, map[string]string{"dark/brick.dds": "dark brick", "dark/grass.dds": "dark grass"})

	require.NoError(t, run(t, "apply", "-p", archive, "-i", version))

	assert.Equal(t, "dark brick", read(t, filepath.Join(textures, "brick.dds")))
	assert.Equal(t, "dark grass", read(t, filepath.Join(textures, "grass.dds")))

	sets, err := treepatch.ListBackups(osFs, filepath.Join(version, "PlatformContent", "pc", "backups"))
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 1, sets[0].Files)
}

func TestApplyCommandUsesConfiguredLocations(t *testing.T) {
	base := isolate(t)
	t.Setenv("RIVALSPATCH_INSTALL_TEXTURESSUBDIR", "tex")
	version := filepath.Join(base, "local", "Bloxstrap", "Versions", "version-1")
	write(t, filepath.Join(version, "tex", "brick.dds"), "old brick")
	writeZip(t, filepath.Join(base, "Documents", "rivalsPayload", "dark-textures-rivals.zip"),
		map[string]string{"brick.dds": "dark brick"})

	require.NoError(t, run(t, "apply"))
	assert.Equal(t, "dark brick", read(t, filepath.Join(version, "tex", "brick.dds")))
}

func TestApplyCommandMissingInstall(t *testing.T) {
	base := isolate(t)
	archive := filepath.Join(base, "pack.zip")
	writeZip(t, archive, map[string]string{"brick.dds": "dark brick"})

	err := run(t, "apply", "-p", archive, "-i", filepath.Join(base, "nope"))
	assert.ErrorIs(t, err, locate.ErrNotFound)
}

func TestSkyCommand(t *testing.T) {
	base := isolate(t)
	version := filepath.Join(base, "version-3")
	sky := filepath.Join(version, "PlatformContent", "pc", "textures", "sky")
	archive := filepath.Join(base, "skies.zip")
	write(t, filepath.Join(sky, "sky512_bk.tex"), "old sky")
	writeZip(t, archive, map[string]string{
		"Night/sky512_bk.tex":  "night bk",
		"Sunset/sky512_bk.tex": "sunset bk",
		"Sunset/sky512_ft.tex": "sunset ft",
	})

	require.NoError(t, run(t, "sky", "-a", archive))
	assert.Equal(t, "old sky", read(t, filepath.Join(sky, "sky512_bk.tex")), "listing changes nothing")

	require.NoError(t, run(t, "sky", "sunset", "-a", archive, "-i", version))
	assert.Equal(t, "sunset bk", read(t, filepath.Join(sky, "sky512_bk.tex")))
	assert.Equal(t, "sunset ft", read(t, filepath.Join(sky, "sky512_ft.tex")))

	err := run(t, "sky", "Aurora", "-a", archive, "-i", version)
	assert.ErrorIs(t, err, payload.ErrNotFound)
}

func TestIdentityCommand(t *testing.T) {
	base := isolate(t)
	lock := filepath.Join(base, ".config", "rivalspatch", "user.lock")
	write(t, lock, "player\n")

	require.NoError(t, run(t, "identity"))
	assert.Equal(t, "player\n", read(t, lock))

	require.NoError(t, run(t, "identity", "--reset"))
	_, err := os.Stat(lock)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, run(t, "identity"))
}
