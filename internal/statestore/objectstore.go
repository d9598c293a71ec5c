package statestore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/backend"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// ObjectStore implements Store against a single object, addressed by
// bucket and key, reusing C6's object-store abstraction. Save writes the
// whole blob in one request; object-store PUTs are whole-object, so there
// is no partial-write window to guard against separately.
type ObjectStore struct {
	Store  backend.ObjectStore
	Bucket string
	Key    string
}

// NewObjectStore returns an ObjectStore-backed Store.
func NewObjectStore(store backend.ObjectStore, bucket, key string) *ObjectStore {
	return &ObjectStore{Store: store, Bucket: bucket, Key: key}
}

// Load returns the empty state if the target object does not exist yet.
func (o *ObjectStore) Load(ctx context.Context) (domain.State, error) {
	data, err := o.Store.Get(o.Bucket, o.Key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewState(), nil
		}
		return domain.State{}, fmt.Errorf("read state object: %w", err)
	}
	return decodeState(data)
}

// Save writes the encoded state to the target object in one request.
func (o *ObjectStore) Save(ctx context.Context, state domain.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := o.Store.Put(o.Bucket, o.Key, data); err != nil {
		return fmt.Errorf("write state object: %w", err)
	}
	return nil
}
