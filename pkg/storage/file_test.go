package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilegram/pkg/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFileStoreUpsertAndGet(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	snapshot := models.NewSnapshot(models.Profile{Username: "example", FollowersCount: 42}, nil, models.StatusSuccess)
	require.NoError(t, store.Upsert(ctx, "example", snapshot))

	got, err := store.Get(ctx, "example")
	require.NoError(t, err)
	assert.Equal(t, "example", got.User.Username)
	assert.Equal(t, 42, got.User.FollowersCount)
	assert.Equal(t, models.StatusSuccess, got.Status)
}

func TestFileStoreGetMissing(t *testing.T) {
	store := newTestFileStore(t)

	_, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreUpsertOverwrites(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	first := models.NewSnapshot(models.Profile{Username: "example", FollowersCount: 1}, nil, models.StatusSuccess)
	second := models.NewSnapshot(models.Profile{Username: "example", FollowersCount: 2}, nil, models.StatusSuccess)

	require.NoError(t, store.Upsert(ctx, "example", first))
	require.NoError(t, store.Upsert(ctx, "example", second))

	got, err := store.Get(ctx, "example")
	require.NoError(t, err)
	assert.Equal(t, 2, got.User.FollowersCount, "last write wins")
}

func TestFileStoreUpsertIsIdempotent(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	snapshot := models.NewSnapshot(models.Profile{Username: "example"}, nil, models.StatusEmptyOrPrivate)
	require.NoError(t, store.Upsert(ctx, "example", snapshot))
	require.NoError(t, store.Upsert(ctx, "example", snapshot))

	got, err := store.Get(ctx, "example")
	require.NoError(t, err)
	assert.Equal(t, snapshot.Status, got.Status)
	assert.Equal(t, snapshot.User, got.User)
}

func TestFileStoreKeysAreCaseInsensitive(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	snapshot := models.NewSnapshot(models.Profile{Username: "Example"}, nil, models.StatusSuccess)
	require.NoError(t, store.Upsert(ctx, "Example", snapshot))

	got, err := store.Get(ctx, "example")
	require.NoError(t, err)
	assert.Equal(t, "Example", got.User.Username)
}

func TestFileStoreNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	snapshot := models.NewSnapshot(models.Profile{Username: "example"}, nil, models.StatusSuccess)
	require.NoError(t, store.Upsert(context.Background(), "example", snapshot))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStoreConcurrentUpsertsSameKey(t *testing.T) {
	store := newTestFileStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			snapshot := models.NewSnapshot(models.Profile{Username: "example", FollowersCount: n}, nil, models.StatusSuccess)
			assert.NoError(t, store.Upsert(ctx, "example", snapshot))
		}(i)
	}
	wg.Wait()

	// Whichever write won, the stored file must be a complete snapshot.
	got, err := store.Get(ctx, "example")
	require.NoError(t, err)
	assert.Equal(t, "example", got.User.Username)
	assert.Equal(t, models.StatusSuccess, got.Status)
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example", "example"},
		{"user.name_01", "user.name_01"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"weird name!", "weird_name_"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeUsername(tt.in), "input %q", tt.in)
	}
}

func TestNewFileStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")

	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
