package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The managed and generic-HTTP backends are required to satisfy identical
// invariants: score clamping and skipping malformed retrieval rows. This
// file runs one assertion function against both, each wired to return the
// same raw rows through its own wire shape.
func assertClampsAndSkipsMalformed(t *testing.T, b Backend) {
	t.Helper()
	docs, err := b.Retrieve(context.Background(), "question", 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 1.0, docs[0].Score)
	assert.Equal(t, 0.0, docs[1].Score)
	assert.Equal(t, "a", docs[0].PostID)
	assert.Equal(t, "b", docs[1].PostID)
}

func TestBackendProperty_Managed_ClampsAndSkipsMalformed(t *testing.T) {
	client := &fakeManagedQueryClient{results: []ManagedQueryResult{
		{ChunkText: "good", Relevance: 1.5, Metadata: map[string]interface{}{"post_id": "a", "title": "A", "url": "https://x/a"}},
		{ChunkText: "bad", Relevance: -0.5, Metadata: map[string]interface{}{"post_id": "b", "title": "B", "url": "https://x/b"}},
		{ChunkText: "malformed", Relevance: 0.5, Metadata: map[string]interface{}{"post_id": "c"}},
	}}
	m := NewManaged(NewLocalFileObjectStore(t.TempDir()), client, ManagedConfig{CorpusID: "corpus-1"})
	assertClampsAndSkipsMalformed(t, m)
}

func TestBackendProperty_HTTP_ClampsAndSkipsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := queryResponse{Results: []queryResultRow{
			{PageContent: "good", Score: 1.5, Metadata: map[string]interface{}{"post_id": "a", "title": "A", "url": "https://x/a"}},
			{PageContent: "bad", Score: -0.5, Metadata: map[string]interface{}{"post_id": "b", "title": "B", "url": "https://x/b"}},
			{PageContent: "malformed", Score: 0.5, Metadata: map[string]interface{}{"post_id": "c"}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	h := NewHTTP(HTTPConfig{BaseURL: server.URL, CorpusID: "corpus-1"})
	assertClampsAndSkipsMalformed(t, h)
}
