// Package config implements the hard-validating configuration surface
// from §6: the must-have settings the ingestion and QA engine cannot run
// without. Its fields are read through the warn-and-default env getters in
// pkg/config.
package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgconfig "github.com/TomBombadyl/nvidia-blog-agent/pkg/config"
)

// BackendKind selects which retrieval-backend implementation is wired.
type BackendKind string

const (
	BackendManaged BackendKind = "managed"
	BackendHTTP    BackendKind = "http"
)

// Config is the full recognized configuration surface from §6.
type Config struct {
	FeedURL  string
	Backend  BackendKind
	CorpusID string

	DocsBucket string

	HTTPRAGBaseURL string
	HTTPRAGAPIKey  string

	LLMSummaryBudgetChars int

	FetchTimeout   time.Duration
	BackendTimeout time.Duration

	FetchConcurrency     int
	SummarizeConcurrency int
	IngestConcurrency    int

	CacheMaxSize int
	CacheTTL     time.Duration

	SessionTTL    time.Duration
	SessionLogMax int

	HistoryMaxEntries int

	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	RetryJitter      float64

	StatePath string
}

// Load reads the configuration surface from the environment, applying
// documented defaults, and hard-validates the settings that have no safe
// default: feed_url, backend, and the fields the chosen backend requires.
// Unlike internal/pkg/config, a missing required setting is a fatal error,
// not a warn-and-default.
func Load() (Config, error) {
	cfg := Config{
		FeedURL:               pkgconfig.GetEnvString("FEED_URL", ""),
		Backend:               BackendKind(pkgconfig.GetEnvString("BACKEND", "")),
		CorpusID:              pkgconfig.GetEnvString("CORPUS_ID", uuid.NewString()),
		DocsBucket:            pkgconfig.GetEnvString("DOCS_BUCKET", ""),
		HTTPRAGBaseURL:        pkgconfig.GetEnvString("HTTP_RAG_BASE_URL", ""),
		HTTPRAGAPIKey:         pkgconfig.GetEnvString("HTTP_RAG_API_KEY", ""),
		LLMSummaryBudgetChars: pkgconfig.GetEnvInt("LLM_SUMMARY_BUDGET_CHARS", 4000),
		FetchTimeout:          pkgconfig.GetEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		BackendTimeout:        pkgconfig.GetEnvDuration("BACKEND_TIMEOUT", 30*time.Second),
		FetchConcurrency:      pkgconfig.GetEnvInt("FETCH_CONCURRENCY", 8),
		SummarizeConcurrency:  pkgconfig.GetEnvInt("SUMMARIZE_CONCURRENCY", 4),
		IngestConcurrency:     pkgconfig.GetEnvInt("INGEST_CONCURRENCY", 4),
		CacheMaxSize:          pkgconfig.GetEnvInt("CACHE_MAX_SIZE", 1000),
		CacheTTL:              pkgconfig.GetEnvDuration("CACHE_TTL", 1*time.Hour),
		SessionTTL:            pkgconfig.GetEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionLogMax:         pkgconfig.GetEnvInt("SESSION_LOG_MAX", 50),
		HistoryMaxEntries:     pkgconfig.GetEnvInt("HISTORY_MAX_ENTRIES", 10),
		RetryMaxAttempts:      pkgconfig.GetEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryBaseDelay:        pkgconfig.GetEnvDuration("RETRY_BASE_DELAY", 500*time.Millisecond),
		RetryMaxDelay:         pkgconfig.GetEnvDuration("RETRY_MAX_DELAY", 2*time.Second),
		RetryJitter:           0.2,
		StatePath:             pkgconfig.GetEnvString("STATE_PATH", "state.json"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("feed_url is required")
	}

	switch c.Backend {
	case BackendManaged:
		if c.DocsBucket == "" {
			return fmt.Errorf("docs_bucket is required for the managed backend")
		}
	case BackendHTTP:
		if c.HTTPRAGBaseURL == "" {
			return fmt.Errorf("http_rag_base_url is required for the http backend")
		}
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendManaged, BackendHTTP, c.Backend)
	}

	return nil
}
