// Package statestore implements C9: the Load/Save contract for the
// pipeline's persistent State, with a local-file and an object-store
// implementation sharing one serialization format.
package statestore

import (
	"context"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// Store is the C9 port.
type Store interface {
	// Load returns the empty state if none has been persisted yet.
	Load(ctx context.Context) (domain.State, error)

	// Save writes atomically: readers never observe a partially written
	// state.
	Save(ctx context.Context, state domain.State) error
}
