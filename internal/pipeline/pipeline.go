// Package pipeline implements the ingestion engine: discover, diff, fetch
// and extract, summarize, ingest, and commit, with bounded concurrency at
// the three stages that touch external systems.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/backend"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/feed"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/summarizer"
)

// ContentFetcher fetches the raw HTML of an article page. Satisfied by
// *contentfetch.Fetcher.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns a post's fetched (or inline) HTML into a RawContent.
// Satisfied by extract.Extract.
type Extractor func(post domain.Post, html string) domain.RawContent

// Config holds the pipeline's concurrency bounds and history retention.
type Config struct {
	FetchConcurrency     int
	SummarizeConcurrency int
	IngestConcurrency    int
	HistoryMaxEntries    int
}

// DefaultConfig returns the documented defaults: fetch 8, summarize 4,
// ingest 4, history 10.
func DefaultConfig() Config {
	return Config{
		FetchConcurrency:     8,
		SummarizeConcurrency: 4,
		IngestConcurrency:    4,
		HistoryMaxEntries:    domain.DefaultHistoryMaxEntries,
	}
}

// Deps bundles the pipeline's external collaborators. Metrics is optional;
// a nil Metrics discards everything.
type Deps struct {
	Fetcher    ContentFetcher
	Extract    Extractor
	Summarizer summarizer.Summarizer
	Backend    backend.Backend
	Metrics    StageMetricsRecorder
}

// Run executes one ingestion cycle against feedDoc and returns the updated
// state. A cancelled context aborts unstarted items and does not commit:
// the returned state is the input state, unchanged, alongside ctx.Err().
func Run(ctx context.Context, feedDoc, source string, state domain.State, deps Deps, cfg Config) (domain.State, domain.IngestionResult, error) {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	start := time.Now()
	defer func() { metrics.RecordRunDuration(time.Since(start)) }()

	posts := feed.Parse(feedDoc, source)

	seen := state.SeenSet()
	var newPosts []domain.Post
	for _, p := range posts {
		if _, ok := seen[p.ID]; !ok {
			newPosts = append(newPosts, p)
		}
	}

	raws := make([]*domain.RawContent, len(newPosts))
	if err := runStage(ctx, cfg.FetchConcurrency, len(newPosts), func(egCtx context.Context, i int) {
		post := newPosts[i]
		var html string
		if !post.HasInlineContent {
			var err error
			html, err = deps.Fetcher.Fetch(egCtx, post.URL)
			if err != nil {
				slog.Warn("content fetch failed, skipping post",
					slog.String("post_id", post.ID), slog.String("url", post.URL), slog.Any("error", err))
				metrics.RecordStageOutcome("fetch", false)
				return
			}
		} else {
			html = post.InlineContent
		}
		raw := deps.Extract(post, html)
		raws[i] = &raw
		metrics.RecordStageOutcome("fetch", true)
	}); err != nil {
		return state, domain.IngestionResult{}, err
	}

	summaries := make([]*domain.Summary, len(newPosts))
	if err := runStage(ctx, cfg.SummarizeConcurrency, len(newPosts), func(egCtx context.Context, i int) {
		if raws[i] == nil {
			return
		}
		summary, err := deps.Summarizer.Summarize(egCtx, *raws[i])
		if err != nil {
			slog.Warn("summarization failed, skipping post",
				slog.String("post_id", newPosts[i].ID), slog.Any("error", err))
			metrics.RecordStageOutcome("summarize", false)
			return
		}
		summaries[i] = &summary
		metrics.RecordStageOutcome("summarize", true)
	}); err != nil {
		return state, domain.IngestionResult{}, err
	}

	ingested := make([]bool, len(newPosts))
	if err := runStage(ctx, cfg.IngestConcurrency, len(newPosts), func(egCtx context.Context, i int) {
		if summaries[i] == nil {
			return
		}
		if err := deps.Backend.Ingest(egCtx, *summaries[i]); err != nil {
			slog.Warn("ingest failed, skipping post",
				slog.String("post_id", newPosts[i].ID), slog.Any("error", err))
			metrics.RecordStageOutcome("ingest", false)
			return
		}
		ingested[i] = true
		metrics.RecordStageOutcome("ingest", true)
	}); err != nil {
		return state, domain.IngestionResult{}, err
	}

	if ctx.Err() != nil {
		return state, domain.IngestionResult{}, ctx.Err()
	}

	var ingestedIDs []string
	summarizedCount := 0
	for i, post := range newPosts {
		if summaries[i] != nil {
			summarizedCount++
		}
		if ingested[i] {
			ingestedIDs = append(ingestedIDs, post.ID)
		}
	}

	result := domain.IngestionResult{
		DiscoveredCount: len(posts),
		NewCount:        len(newPosts),
		SummarizedCount: summarizedCount,
		IngestedCount:   len(ingestedIDs),
		NewPostIDs:      ingestedIDs,
		Timestamp:       time.Now().UTC(),
	}

	metrics.RecordIngested(len(ingestedIDs))

	newState := state.WithCommit(ingestedIDs, result, cfg.HistoryMaxEntries)
	return newState, result, nil
}

// runStage fans n independent units of work out to at most parallelism
// concurrent goroutines, restoring index order implicitly since each unit
// writes to its own slot. It never returns a per-item error: item failures
// are absorbed by fn itself. The only error it can return is context
// cancellation.
func runStage(ctx context.Context, parallelism, n int, fn func(ctx context.Context, i int)) error {
	if n == 0 {
		return nil
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	sem := make(chan struct{}, parallelism)
	eg, egCtx := errgroup.WithContext(ctx)

	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-egCtx.Done():
				return egCtx.Err()
			}
			defer func() { <-sem }()

			if egCtx.Err() != nil {
				return egCtx.Err()
			}
			fn(egCtx, i)
			return nil
		})
	}

	return eg.Wait()
}
