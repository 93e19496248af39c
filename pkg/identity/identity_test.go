package identity

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticatorLifecycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := &FileStore{Fs: fs, Path: "/cfg/user.lock"}

	auth := NewAuthenticator(store)
	require.NoError(t, auth.Init())
	assert.Equal(t, Unset, auth.State())
	assert.Empty(t, auth.Name())

	assert.ErrorIs(t, auth.Verify("   "), ErrEmptyName)
	assert.Equal(t, Unset, auth.State())

	require.NoError(t, auth.Verify(" player1 \n"))
	assert.Equal(t, Verified, auth.State())
	assert.Equal(t, "player1", auth.Name())

	// A fresh process sees the stored user.
	again := NewAuthenticator(store)
	require.NoError(t, again.Init())
	assert.Equal(t, Verified, again.State())
	assert.Equal(t, "player1", again.Name())

	require.NoError(t, again.Reset())
	assert.Equal(t, Unset, again.State())
	exists, err := afero.Exists(fs, "/cfg/user.lock")
	require.NoError(t, err)
	assert.False(t, exists)

	// Clearing twice is fine.
	require.NoError(t, again.Reset())
}

func TestFileStoreTrimsContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/user.lock", []byte("  someone\r\n"), 0o600))

	name, err := (&FileStore{Fs: fs, Path: "/user.lock"}).Load()
	require.NoError(t, err)
	assert.Equal(t, "someone", name)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unset", Unset.String())
	assert.Equal(t, "verified", Verified.String())
	assert.Equal(t, "State(7)", State(7).String())
}
