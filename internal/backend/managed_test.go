package backend

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

type fakeManagedQueryClient struct {
	results []ManagedQueryResult
	err     error
}

func (f *fakeManagedQueryClient) Query(ctx context.Context, corpusID, question string, topK int) ([]ManagedQueryResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func testSummary(t *testing.T) domain.Summary {
	t.Helper()
	published := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := domain.NewSummary(
		"post-1", "Title", "https://example.org/post-1", &published,
		"An executive summary long enough.",
		"A technical summary that is long enough to pass the fifty character floor easily.",
		[]string{"bullet one"}, []string{"Go", "go", "concurrency"}, "claude",
	)
	require.NoError(t, err)
	return s
}

func TestManaged_IngestWritesTwoObjects(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalFileObjectStore(dir)
	m := NewManaged(store, &fakeManagedQueryClient{}, ManagedConfig{Bucket: "docs", Prefix: "blog/", CorpusID: "corpus-1"})

	err := m.Ingest(context.Background(), testSummary(t))
	require.NoError(t, err)

	text, err := os.ReadFile(filepath.Join(dir, "docs", "blog/post-1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "Title")

	metaBytes, err := os.ReadFile(filepath.Join(dir, "docs", "blog/post-1.metadata.json"))
	require.NoError(t, err)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(metaBytes, &meta))
	assert.Equal(t, "post-1", meta["post_id"])
}

func TestManaged_IngestIsIdempotentByPostID(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalFileObjectStore(dir)
	m := NewManaged(store, &fakeManagedQueryClient{}, ManagedConfig{Bucket: "docs", CorpusID: "corpus-1"})

	summary := testSummary(t)
	require.NoError(t, m.Ingest(context.Background(), summary))
	require.NoError(t, m.Ingest(context.Background(), summary))

	entries, err := os.ReadDir(filepath.Join(dir, "docs"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestManaged_Retrieve_ClampsScoresAndSkipsMalformed(t *testing.T) {
	client := &fakeManagedQueryClient{results: []ManagedQueryResult{
		{ChunkText: "good", Relevance: 1.5, Metadata: map[string]interface{}{"post_id": "a", "title": "A", "url": "https://x/a"}},
		{ChunkText: "bad", Relevance: -0.5, Metadata: map[string]interface{}{"post_id": "b", "title": "B", "url": "https://x/b"}},
		{ChunkText: "malformed", Relevance: 0.5, Metadata: map[string]interface{}{"post_id": "c"}},
	}}
	m := NewManaged(NewLocalFileObjectStore(t.TempDir()), client, ManagedConfig{CorpusID: "corpus-1"})

	docs, err := m.Retrieve(context.Background(), "question", 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 1.0, docs[0].Score)
	assert.Equal(t, 0.0, docs[1].Score)
}

func TestManaged_Retrieve_RespectsK(t *testing.T) {
	client := &fakeManagedQueryClient{results: []ManagedQueryResult{
		{Relevance: 0.9, Metadata: map[string]interface{}{"title": "A", "url": "https://x/a"}},
		{Relevance: 0.8, Metadata: map[string]interface{}{"title": "B", "url": "https://x/b"}},
		{Relevance: 0.7, Metadata: map[string]interface{}{"title": "C", "url": "https://x/c"}},
	}}
	m := NewManaged(NewLocalFileObjectStore(t.TempDir()), client, ManagedConfig{CorpusID: "corpus-1"})

	docs, err := m.Retrieve(context.Background(), "question", 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestManaged_Retrieve_PropagatesQueryError(t *testing.T) {
	client := &fakeManagedQueryClient{err: errors.New("query api down")}
	m := NewManaged(NewLocalFileObjectStore(t.TempDir()), client, ManagedConfig{CorpusID: "corpus-1"})

	_, err := m.Retrieve(context.Background(), "question", 10)
	assert.Error(t, err)
}
