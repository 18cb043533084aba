package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvStore(t *testing.T) {
	store := NewEnvStore()

	t.Run("retrieve unset", func(t *testing.T) {
		t.Setenv(EnvTokenVar, "")
		_, err := store.Retrieve()
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("retrieve set", func(t *testing.T) {
		t.Setenv(EnvTokenVar, "apify_api_test123")
		token, err := store.Retrieve()
		require.NoError(t, err)
		assert.Equal(t, "apify_api_test123", token)
	})

	t.Run("read only", func(t *testing.T) {
		assert.Error(t, store.Save("anything"))
		assert.Error(t, store.Delete())
	})
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv("PROFILEGRAM_PASSPHRASE", "test-passphrase")

	dir := t.TempDir()
	store, err := NewEncryptedFileStore(filepath.Join(dir, "token.enc"))
	require.NoError(t, err)

	t.Run("retrieve before save", func(t *testing.T) {
		_, err := store.Retrieve()
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("save and retrieve", func(t *testing.T) {
		require.NoError(t, store.Save("apify_api_secret"))

		token, err := store.Retrieve()
		require.NoError(t, err)
		assert.Equal(t, "apify_api_secret", token)
	})

	t.Run("token not stored in plaintext", func(t *testing.T) {
		content, err := os.ReadFile(filepath.Join(dir, "token.enc"))
		require.NoError(t, err)
		assert.NotContains(t, string(content), "apify_api_secret")
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Save("apify_api_rotated"))

		token, err := store.Retrieve()
		require.NoError(t, err)
		assert.Equal(t, "apify_api_rotated", token)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete())

		_, err := store.Retrieve()
		assert.ErrorIs(t, err, ErrTokenNotFound)
		assert.ErrorIs(t, store.Delete(), ErrTokenNotFound)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		assert.ErrorIs(t, store.Save(""), ErrInvalidToken)
	})
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token.enc")

	t.Setenv("PROFILEGRAM_PASSPHRASE", "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("apify_api_secret"))

	t.Setenv("PROFILEGRAM_PASSPHRASE", "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = other.Retrieve()
	assert.Error(t, err)
}

func TestManagerResolve(t *testing.T) {
	t.Run("first store wins", func(t *testing.T) {
		first := NewMockStore()
		require.NoError(t, first.Save("token-one"))
		second := NewMockStore()
		require.NoError(t, second.Save("token-two"))

		m := NewManagerWithStores(first, second)
		token, err := m.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "token-one", token)
	})

	t.Run("falls through failing stores", func(t *testing.T) {
		broken := NewMockStore()
		broken.RetrieveErr = errors.New("keyring locked")
		backup := NewMockStore()
		require.NoError(t, backup.Save("token-backup"))

		m := NewManagerWithStores(broken, backup)
		token, err := m.Resolve()
		require.NoError(t, err)
		assert.Equal(t, "token-backup", token)
	})

	t.Run("nothing stored", func(t *testing.T) {
		m := NewManagerWithStores(NewMockStore(), NewMockStore())
		_, err := m.Resolve()
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestManagerSave(t *testing.T) {
	t.Run("skips env store", func(t *testing.T) {
		writable := NewMockStore()
		m := NewManagerWithStores(NewEnvStore(), writable)

		require.NoError(t, m.Save("apify_api_new"))

		token, err := writable.Retrieve()
		require.NoError(t, err)
		assert.Equal(t, "apify_api_new", token)
	})

	t.Run("falls back when first writable fails", func(t *testing.T) {
		broken := NewMockStore()
		broken.SaveErr = errors.New("keyring locked")
		backup := NewMockStore()

		m := NewManagerWithStores(broken, backup)
		require.NoError(t, m.Save("apify_api_new"))

		token, err := backup.Retrieve()
		require.NoError(t, err)
		assert.Equal(t, "apify_api_new", token)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		m := NewManagerWithStores(NewMockStore())
		assert.ErrorIs(t, m.Save(""), ErrInvalidToken)
	})
}

func TestManagerDelete(t *testing.T) {
	first := NewMockStore()
	require.NoError(t, first.Save("token"))
	second := NewMockStore()
	require.NoError(t, second.Save("token"))

	m := NewManagerWithStores(first, second)
	require.NoError(t, m.Delete())

	_, err := first.Retrieve()
	assert.ErrorIs(t, err, ErrTokenNotFound)
	_, err = second.Retrieve()
	assert.ErrorIs(t, err, ErrTokenNotFound)

	assert.ErrorIs(t, m.Delete(), ErrTokenNotFound)
}

func TestManagerSources(t *testing.T) {
	stored := NewMockStore()
	require.NoError(t, stored.Save("token"))

	m := NewManagerWithStores(NewMockStore(), stored)
	assert.Equal(t, []string{"mock"}, m.Sources())
}
