package treepatch

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBackups(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, srcRoot+"/a.png", []byte("new"))
	writeFile(t, fs, srcRoot+"/sub/b.png", []byte("new"))
	writeFile(t, fs, dstRoot+"/a.png", []byte("old"))
	writeFile(t, fs, dstRoot+"/sub/b.png", []byte("old"))

	clock := fixedNow
	p := NewPatcher(Options{Fs: fs, Now: func() time.Time { return clock }})
	_, err := p.Patch(srcRoot, dstRoot)
	require.NoError(t, err)
	clock = clock.Add(time.Hour)
	_, err = p.Patch(srcRoot, dstRoot)
	require.NoError(t, err)
	writeFile(t, fs, bakRoot+"/notes.txt", []byte("not a set"))

	sets, err := ListBackups(fs, bakRoot)
	require.NoError(t, err)
	require.Len(t, sets, 2)

	assert.Equal(t, "20261019_123000", sets[0].Name)
	assert.Equal(t, "20261019_133000", sets[1].Name)
	assert.Equal(t, 2, sets[0].Files)
	assert.True(t, sets[0].Created.Equal(fixedNow))
	assert.True(t, sets[1].Created.After(sets[0].Created))
}

func TestListBackupsMissingRoot(t *testing.T) {
	sets, err := ListBackups(afero.NewMemMapFs(), "/none")
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestRestoreFromBackupSet(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, srcRoot+"/a.png", []byte("new"))
	writeFile(t, fs, dstRoot+"/a.png", []byte("original"))

	clock := fixedNow
	p := NewPatcher(Options{Fs: fs, Now: func() time.Time { return clock }})
	patched, err := p.Patch(srcRoot, dstRoot)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	restored, err := p.Patch(patched.BackupPath, dstRoot)
	require.NoError(t, err)

	assert.Equal(t, 1, restored.FilesOverwritten)
	assert.Equal(t, "original", string(readFile(t, fs, dstRoot+"/a.png")))
	assert.Equal(t, "new", string(readFile(t, fs, restored.BackupPath+"/a.png")))
}
