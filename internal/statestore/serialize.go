package statestore

import (
	"encoding/json"
	"fmt"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// wireState mirrors the on-disk shape from §6: a single JSON blob with
// app:-prefixed keys, used identically whether the target is a local file
// or an object-store URI.
type wireState struct {
	LastSeenPostIDs []string                 `json:"app:last_seen_post_ids"`
	LastResult      *domain.IngestionResult  `json:"app:last_result"`
	History         []domain.IngestionResult `json:"app:history"`
}

func encodeState(state domain.State) ([]byte, error) {
	wire := wireState{
		LastSeenPostIDs: state.LastSeenPostIDs,
		LastResult:      state.LastResult,
		History:         state.History,
	}
	if wire.LastSeenPostIDs == nil {
		wire.LastSeenPostIDs = []string{}
	}
	if wire.History == nil {
		wire.History = []domain.IngestionResult{}
	}
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (domain.State, error) {
	var wire wireState
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.State{}, fmt.Errorf("decode state: %w", err)
	}
	return domain.State{
		LastSeenPostIDs: wire.LastSeenPostIDs,
		LastResult:      wire.LastResult,
		History:         wire.History,
	}, nil
}
