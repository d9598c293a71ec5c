// Package backend implements C6: the retrieval-backend port and its two
// interchangeable implementations, a managed vector corpus and a generic
// HTTP RAG service. Both are selected once at construction from
// configuration; no call path may branch on which one is active.
package backend

import (
	"context"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// Backend is the single retrieval-backend contract.
type Backend interface {
	// Ingest indexes a summary. Idempotent by post id: re-ingesting an id
	// already present overwrites rather than duplicating.
	Ingest(ctx context.Context, summary domain.Summary) error

	// Retrieve returns at most k RetrievedDocs ordered by relevance.
	// Malformed entries are skipped, never errored.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedDoc, error)
}
