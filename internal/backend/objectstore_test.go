package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileObjectStore_PutCreatesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalFileObjectStore(dir)

	require.NoError(t, store.Put("bucket", "a/b.txt", []byte("first")))
	data, err := os.ReadFile(filepath.Join(dir, "bucket", "a/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, store.Put("bucket", "a/b.txt", []byte("second")))
	data, err = os.ReadFile(filepath.Join(dir, "bucket", "a/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocalFileObjectStore_GetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalFileObjectStore(dir)

	require.NoError(t, store.Put("bucket", "key.json", []byte(`{"a":1}`)))
	data, err := store.Get("bucket", "key.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestLocalFileObjectStore_GetMissingReturnsError(t *testing.T) {
	store := NewLocalFileObjectStore(t.TempDir())
	_, err := store.Get("bucket", "missing.json")
	assert.Error(t, err)
}
