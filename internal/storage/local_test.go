package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	path, err := store.Save(BucketPosts, "photo.jpg", []byte("image data"))
	require.NoError(t, err)
	assert.Equal(t, "posts/photo.jpg", path)
	assert.True(t, store.Exists(BucketPosts, "photo.jpg"))

	data, err := store.Open(BucketPosts, "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("image data"), data)

	require.NoError(t, store.Delete(path))
	assert.False(t, store.Exists(BucketPosts, "photo.jpg"))
	_, err = store.Open(BucketPosts, "photo.jpg")
	assert.ErrorIs(t, err, os.ErrNotExist)

	// Deleting a missing file is not an error.
	require.NoError(t, store.Delete(path))
}

func TestLocalStore_CreatesBucketDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := NewLocalStore(root)
	require.NoError(t, err)

	for _, bucket := range []string{BucketPosts, BucketProfile} {
		info, err := os.Stat(filepath.Join(root, bucket))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestLocalStore_RejectsBadInput(t *testing.T) {
	t.Parallel()

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	t.Run("unknown bucket", func(t *testing.T) {
		t.Parallel()
		_, err := store.Save("secrets", "file.jpg", []byte("x"))
		assert.Error(t, err)
	})

	t.Run("traversal filename", func(t *testing.T) {
		t.Parallel()
		_, err := store.Save(BucketPosts, "../escape.jpg", []byte("x"))
		assert.Error(t, err)
	})

	t.Run("invalid delete path", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, store.Delete("not-a-stored-path"))
		assert.Error(t, store.Delete("posts/../../etc/passwd"))
	})
}

func TestValidFilename(t *testing.T) {
	t.Parallel()

	valid := []string{"photo.jpg", "1700000000.png", "a_b-c.webp"}
	for _, name := range valid {
		assert.True(t, ValidFilename(name), name)
	}

	invalid := []string{"", "..", "../x.jpg", "a/b.jpg", "no-extension", ".hidden", "sp ace.jpg"}
	for _, name := range invalid {
		assert.False(t, ValidFilename(name), name)
	}
}

func TestSplitPath(t *testing.T) {
	t.Parallel()

	bucket, filename, ok := SplitPath("profile/avatar.webp")
	require.True(t, ok)
	assert.Equal(t, BucketProfile, bucket)
	assert.Equal(t, "avatar.webp", filename)

	for _, path := range []string{"", "avatar.webp", "secrets/x.jpg", "posts/../x.jpg"} {
		_, _, ok := SplitPath(path)
		assert.False(t, ok, path)
	}
}
