package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()

	_, ok := store.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyToken, "access"))
	require.NoError(t, store.Set(KeyRefreshToken, "refresh"))

	v, ok := store.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "access", v)

	require.NoError(t, store.Delete(sessionKeys...))
	_, ok = store.Get(KeyRefreshToken)
	assert.False(t, ok)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store, err := NewFileTokenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyToken, "access"))
	require.NoError(t, store.Set(KeyUser, `{"id":1}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	t.Run("values survive reopen", func(t *testing.T) {
		reopened, err := NewFileTokenStore(path)
		require.NoError(t, err)

		v, ok := reopened.Get(KeyUser)
		assert.True(t, ok)
		assert.Equal(t, `{"id":1}`, v)
	})

	t.Run("delete is persisted", func(t *testing.T) {
		require.NoError(t, store.Delete(KeyToken))

		reopened, err := NewFileTokenStore(path)
		require.NoError(t, err)
		_, ok := reopened.Get(KeyToken)
		assert.False(t, ok)
	})

	t.Run("corrupt file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

		_, err := NewFileTokenStore(bad)
		assert.Error(t, err)
	})
}
