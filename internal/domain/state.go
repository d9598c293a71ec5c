package domain

import "time"

// IngestionResult is the per-run record produced by one pipeline call. It
// doubles as the pipeline's return value and as the atomic unit appended to
// state history.
type IngestionResult struct {
	DiscoveredCount int
	NewCount        int
	SummarizedCount int
	IngestedCount   int
	NewPostIDs      []string
	Timestamp       time.Time
}

// DefaultHistoryMaxEntries is the default bound on State.History length.
const DefaultHistoryMaxEntries = 10

// State is the persistent key/value mapping the pipeline reads and writes
// around each ingest run. LastSeenPostIDs behaves as a set in memory even
// though it round-trips through storage as an ordered sequence.
type State struct {
	LastSeenPostIDs []string
	LastResult      *IngestionResult
	History         []IngestionResult
}

// NewState returns the empty state used when no prior state has been
// persisted.
func NewState() State {
	return State{
		LastSeenPostIDs: []string{},
		History:         []IngestionResult{},
	}
}

// SeenSet returns the last-seen post ids as a lookup set.
func (s State) SeenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.LastSeenPostIDs))
	for _, id := range s.LastSeenPostIDs {
		set[id] = struct{}{}
	}
	return set
}

// WithCommit returns a new State reflecting one ingest run's commit: newly
// ingested ids are added to the seen set, the result becomes the latest,
// and history is appended and trimmed to maxHistory entries (oldest
// dropped first).
func (s State) WithCommit(ingestedIDs []string, result IngestionResult, maxHistory int) State {
	seen := s.SeenSet()
	nextSeen := append([]string(nil), s.LastSeenPostIDs...)
	for _, id := range ingestedIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		nextSeen = append(nextSeen, id)
	}

	nextHistory := append(append([]IngestionResult(nil), s.History...), result)
	if maxHistory > 0 && len(nextHistory) > maxHistory {
		nextHistory = nextHistory[len(nextHistory)-maxHistory:]
	}

	resultCopy := result
	return State{
		LastSeenPostIDs: nextSeen,
		LastResult:      &resultCopy,
		History:         nextHistory,
	}
}
