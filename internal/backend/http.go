package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/circuitbreaker"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/retry"
)

// DefaultTimeout is the per-call deadline for the generic-HTTP backend.
const DefaultTimeout = 30 * time.Second

// HTTPConfig configures the generic-HTTP retrieval backend.
type HTTPConfig struct {
	BaseURL  string
	APIKey   string
	CorpusID string
	Timeout  time.Duration
}

// HTTP is the retrieval-backend implementation that talks to a generic
// RAG service over the wire format: POST {base}/add_doc to ingest, POST
// {base}/query to retrieve.
type HTTP struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryPolicy    retry.Policy
	config         HTTPConfig
	docIndex       int
}

// NewHTTP builds an HTTP backend. A zero Timeout defaults to
// DefaultTimeout.
func NewHTTP(config HTTPConfig) *HTTP {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &HTTP{
		client:         &http.Client{Timeout: config.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.BackendConfig("http-rag")),
		retryPolicy:    retry.BackendPolicy(),
		config:         config,
	}
}

type addDocRequest struct {
	Document    string                 `json:"document"`
	DocIndex    int                    `json:"doc_index"`
	DocMetadata map[string]interface{} `json:"doc_metadata"`
	UUID        string                 `json:"uuid"`
}

type queryRequest struct {
	Question string `json:"question"`
	UUID     string `json:"uuid"`
	TopK     int    `json:"top_k"`
}

type queryResultRow struct {
	PageContent string                 `json:"page_content"`
	Score       float64                `json:"score"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type queryResponse struct {
	Results []queryResultRow `json:"results"`
}

// Ingest POSTs the summary's rendering and metadata to {base}/add_doc.
// Re-ingesting the same post id is idempotent on the remote service's
// terms; this backend always sends a fresh request.
func (h *HTTP) Ingest(ctx context.Context, summary domain.Summary) error {
	body := addDocRequest{
		Document:    summary.ToIndexableDocument(),
		DocIndex:    h.nextDocIndex(),
		DocMetadata: summary.ToMetadata(),
		UUID:        h.config.CorpusID,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal add_doc body: %v", ErrPermanent, err)
	}

	return retry.Do(ctx, h.retryPolicy, func() error {
		_, err := h.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, h.post(ctx, "/add_doc", payload, nil)
		})
		return err
	})
}

// Retrieve POSTs {question, uuid, top_k} to {base}/query and maps the
// response's results to RetrievedDoc, clamping scores and skipping
// entries missing a url or title.
func (h *HTTP) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedDoc, error) {
	body := queryRequest{Question: query, UUID: h.config.CorpusID, TopK: k}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal query body: %v", ErrPermanent, err)
	}

	var resp queryResponse
	err = retry.Do(ctx, h.retryPolicy, func() error {
		_, err := h.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, h.post(ctx, "/query", payload, &resp)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	docs := make([]domain.RetrievedDoc, 0, len(resp.Results))
	for _, r := range resp.Results {
		title, _ := r.Metadata["title"].(string)
		url, _ := r.Metadata["url"].(string)
		if title == "" || url == "" {
			continue
		}
		postID, _ := r.Metadata["post_id"].(string)
		docs = append(docs, domain.RetrievedDoc{
			PostID:   postID,
			Title:    title,
			URL:      url,
			Snippet:  r.PageContent,
			Score:    domain.ClampScore(r.Score),
			Metadata: r.Metadata,
		})
		if len(docs) >= k {
			break
		}
	}
	return docs, nil
}

func (h *HTTP) post(ctx context.Context, path string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrPermanent, err)
	}
	return nil
}

func (h *HTTP) nextDocIndex() int {
	h.docIndex++
	return h.docIndex
}
