package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/circuitbreaker"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/retry"
)

// ManagedQueryResult is one row of a managed query API response, already
// shaped to the mapping in the retrieval-backend contract: chunk text,
// relevance, and source metadata.
type ManagedQueryResult struct {
	ChunkText string
	Relevance float64
	Metadata  map[string]interface{}
}

// ManagedQueryClient is the query half of the managed corpus. Its wire
// protocol is opaque to the core; only this mapped shape is observable,
// mirroring the way the teacher's gRPC AI client hides its protobuf
// wire format behind a plain Go method.
type ManagedQueryClient interface {
	Query(ctx context.Context, corpusID, question string, topK int) ([]ManagedQueryResult, error)
}

// ManagedConfig configures the managed-corpus backend.
type ManagedConfig struct {
	Bucket   string
	Prefix   string
	CorpusID string
}

// Managed is the retrieval-backend implementation backed by an object
// store for ingestion and an external managed query API for retrieval.
// Ingestion writes plain objects; an indexer outside this system picks
// them up and makes them searchable, so Ingest here never reports
// "searchable" as a side effect, only "written".
type Managed struct {
	store          ObjectStore
	query          ManagedQueryClient
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryPolicy    retry.Policy
	config         ManagedConfig
}

// NewManaged builds a Managed backend against the given object store and
// query client.
func NewManaged(store ObjectStore, query ManagedQueryClient, config ManagedConfig) *Managed {
	return &Managed{
		store:          store,
		query:          query,
		circuitBreaker: circuitbreaker.New(circuitbreaker.BackendConfig("managed")),
		retryPolicy:    retry.BackendPolicy(),
		config:         config,
	}
}

// Ingest writes {post_id}.txt and {post_id}.metadata.json under the
// configured bucket/prefix. Re-ingesting the same post id overwrites
// both objects in place.
func (m *Managed) Ingest(ctx context.Context, summary domain.Summary) error {
	metadataJSON, err := json.Marshal(summary.ToMetadata())
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %v", ErrPermanent, err)
	}

	textKey := m.config.Prefix + summary.PostID + ".txt"
	metaKey := m.config.Prefix + summary.PostID + ".metadata.json"

	return retry.Do(ctx, m.retryPolicy, func() error {
		_, err := m.circuitBreaker.Execute(func() (interface{}, error) {
			if err := m.store.Put(m.config.Bucket, textKey, []byte(summary.ToIndexableDocument())); err != nil {
				return nil, err
			}
			return nil, m.store.Put(m.config.Bucket, metaKey, metadataJSON)
		})
		return err
	})
}

// Retrieve calls the managed query API and maps its results to
// RetrievedDoc, clamping scores and skipping entries missing a url or
// title rather than erroring.
func (m *Managed) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedDoc, error) {
	var results []ManagedQueryResult
	err := retry.Do(ctx, m.retryPolicy, func() error {
		out, err := m.circuitBreaker.Execute(func() (interface{}, error) {
			return m.query.Query(ctx, m.config.CorpusID, query, k)
		})
		if err != nil {
			return err
		}
		results = out.([]ManagedQueryResult)
		return nil
	})
	if err != nil {
		return nil, err
	}

	docs := make([]domain.RetrievedDoc, 0, len(results))
	for _, r := range results {
		postID, _ := r.Metadata["post_id"].(string)
		title, _ := r.Metadata["title"].(string)
		url, _ := r.Metadata["url"].(string)
		if title == "" || url == "" {
			continue
		}
		docs = append(docs, domain.RetrievedDoc{
			PostID:   postID,
			Title:    title,
			URL:      url,
			Snippet:  r.ChunkText,
			Score:    domain.ClampScore(r.Relevance),
			Metadata: r.Metadata,
		})
		if len(docs) >= k {
			break
		}
	}
	return docs, nil
}
