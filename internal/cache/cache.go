// Package cache implements C10: the response cache, single-flight
// coalescing, and session overlay sitting between the (out of scope) HTTP
// façade and the QA orchestrator.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// DefaultMaxSize is the default LRU capacity for the response cache.
const DefaultMaxSize = 1000

// DefaultTTL is the default response cache entry lifetime.
const DefaultTTL = 1 * time.Hour

type cachedAnswer struct {
	answer string
	docs   []domain.RetrievedDoc
}

// Answerer is the computation the cache fronts: normally
// (*qa.Orchestrator).Answer.
type Answerer func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error)

// Cache wraps an Answerer with a TTL/LRU response cache, single-flight
// coalescing of concurrent identical requests, and an optional session
// query log.
type Cache struct {
	responses *lru.LRU[string, cachedAnswer]
	inflight  singleflight.Group
	sessions  *SessionStore
	compute   Answerer
	metrics   MetricsRecorder
}

// Config configures a Cache. Metrics is optional; a nil Metrics discards
// everything.
type Config struct {
	MaxSize       int
	TTL           time.Duration
	SessionTTL    time.Duration
	SessionLogMax int
	Metrics       MetricsRecorder
}

// DefaultConfig returns §4.9's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxSize:       DefaultMaxSize,
		TTL:           DefaultTTL,
		SessionTTL:    DefaultSessionTTL,
		SessionLogMax: DefaultSessionLogMax,
	}
}

// New builds a Cache in front of compute.
func New(compute Answerer, cfg Config) *Cache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Cache{
		responses: lru.NewLRU[string, cachedAnswer](cfg.MaxSize, nil, cfg.TTL),
		sessions:  NewSessionStore(cfg.SessionLogMax, cfg.SessionTTL),
		compute:   compute,
		metrics:   metrics,
	}
}

// Answer serves question/k from cache when present; otherwise it computes
// it via the wrapped Answerer, coalescing concurrent identical requests
// through single-flight, and caches only on success. When sessionID is
// non-empty, the call is appended to that session's query log regardless
// of whether the answer came from cache.
func (c *Cache) Answer(ctx context.Context, question string, k int, sessionID string) (string, []domain.RetrievedDoc, error) {
	key := Key(question, k)

	if cached, ok := c.responses.Get(key); ok {
		c.metrics.RecordHit()
		c.sessions.Record(sessionID, time.Now(), question, cached.answer, len(cached.docs))
		return cached.answer, cached.docs, nil
	}
	c.metrics.RecordMiss()

	result, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		answer, docs, err := c.compute(ctx, question, k)
		if err != nil {
			return nil, err
		}
		entry := cachedAnswer{answer: answer, docs: docs}
		c.responses.Add(key, entry)
		return entry, nil
	})
	if err != nil {
		c.metrics.RecordComputeError()
		return "", nil, err
	}

	entry := result.(cachedAnswer)
	c.sessions.Record(sessionID, time.Now(), question, entry.answer, len(entry.docs))
	return entry.answer, entry.docs, nil
}

// SessionLog returns sessionID's bounded query log, or nil if unknown or
// expired.
func (c *Cache) SessionLog(sessionID string) []QueryLogEntry {
	return c.sessions.Log(sessionID, time.Now())
}
