package backend

import (
	"fmt"
	"os"
	"path/filepath"
)

// ObjectStore is the minimal read/write surface the managed backend and
// the object-store state store need: put and get an object's bytes under
// bucket+key. No third-party object-store SDK (S3, GCS, MinIO) appears
// anywhere in the retrieved example corpus, so this is a local-filesystem
// implementation on the standard library, addressed by bucket as a
// directory and key as a relative file path.
type ObjectStore interface {
	Put(bucket, key string, data []byte) error
	Get(bucket, key string) ([]byte, error)
}

// LocalFileObjectStore implements ObjectStore against a local directory
// tree, one subdirectory per bucket.
type LocalFileObjectStore struct {
	Root string
}

// NewLocalFileObjectStore returns a LocalFileObjectStore rooted at root.
func NewLocalFileObjectStore(root string) *LocalFileObjectStore {
	return &LocalFileObjectStore{Root: root}
}

// Put writes data to {root}/{bucket}/{key}, creating parent directories as
// needed. Re-ingesting the same key overwrites it in place.
func (s *LocalFileObjectStore) Put(bucket, key string, data []byte) error {
	path := filepath.Join(s.Root, bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Get reads the bytes at {root}/{bucket}/{key}. Returns os.ErrNotExist
// (wrapped) if the object does not exist.
func (s *LocalFileObjectStore) Get(bucket, key string) ([]byte, error) {
	path := filepath.Join(s.Root, bucket, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}
	return data, nil
}
