// Command ingest runs the ingestion pipeline (C7) against the configured
// feed, either once or on a recurring cron schedule.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/backend"
	appconfig "github.com/TomBombadyl/nvidia-blog-agent/internal/config"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/contentfetch"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/extract"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/observability/logging"
	fallbackconfig "github.com/TomBombadyl/nvidia-blog-agent/internal/pkg/config"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/pipeline"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/statestore"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/summarizer"
)

// scheduleConfig holds the optional, fail-open recurring-trigger settings.
// Unlike internal/config's hard requirements, a bad value here degrades to
// a safe default with a logged warning rather than refusing to start.
type scheduleConfig struct {
	Schedule string
	Timezone string
	Enabled  bool
}

func loadScheduleConfig(logger *slog.Logger) scheduleConfig {
	if fallbackconfig.LoadEnvString("INGEST_CRON_SCHEDULE", "") == "" {
		return scheduleConfig{Enabled: false}
	}

	scheduleResult := fallbackconfig.LoadEnvWithFallback("INGEST_CRON_SCHEDULE", "30 5 * * *", fallbackconfig.ValidateCronSchedule)
	timezoneResult := fallbackconfig.LoadEnvWithFallback("INGEST_CRON_TIMEZONE", "UTC", fallbackconfig.ValidateTimezone)

	for _, result := range []fallbackconfig.ConfigLoadResult{scheduleResult, timezoneResult} {
		for _, warning := range result.Warnings {
			logger.Warn("schedule configuration fallback", slog.String("warning", warning))
		}
	}

	return scheduleConfig{
		Schedule: scheduleResult.Value.(string),
		Timezone: timezoneResult.Value.(string),
		Enabled:  true,
	}
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := appconfig.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	deps, err := setupDeps(logger, cfg)
	if err != nil {
		logger.Error("failed to wire ingestion dependencies", slog.Any("error", err))
		os.Exit(1)
	}

	store := statestore.NewLocalFile(cfg.StatePath)

	schedule := loadScheduleConfig(logger)
	if !schedule.Enabled {
		runOnce(context.Background(), logger, cfg, deps, store)
		return
	}

	runOnSchedule(logger, cfg, deps, store, schedule)
}

func setupDeps(logger *slog.Logger, cfg appconfig.Config) (pipeline.Deps, error) {
	be, err := setupBackend(cfg)
	if err != nil {
		return pipeline.Deps{}, err
	}

	sum := setupSummarizer(logger, cfg)

	return pipeline.Deps{
		Fetcher:    contentfetch.New(cfg.FetchTimeout),
		Extract:    extract.Extract,
		Summarizer: sum,
		Backend:    be,
		Metrics:    pipeline.NewPrometheusStageMetrics(),
	}, nil
}

func setupBackend(cfg appconfig.Config) (backend.Backend, error) {
	switch cfg.Backend {
	case appconfig.BackendHTTP:
		return backend.NewHTTP(backend.HTTPConfig{
			BaseURL:  cfg.HTTPRAGBaseURL,
			APIKey:   cfg.HTTPRAGAPIKey,
			CorpusID: cfg.CorpusID,
			Timeout:  cfg.BackendTimeout,
		}), nil
	case appconfig.BackendManaged:
		// The managed corpus's query protocol is opaque to this system
		// (external indexer, external query API); no concrete client
		// implementation is shipped. Operators running the managed
		// backend must supply one and wire it in a fork of this command.
		return nil, fmt.Errorf("managed backend selected but no ManagedQueryClient is wired into this binary")
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func setupSummarizer(logger *slog.Logger, cfg appconfig.Config) summarizer.Summarizer {
	sumConfig := summarizer.DefaultConfig(cfg.FeedURL)
	sumConfig.BudgetChars = cfg.LLMSummaryBudgetChars
	sumConfig.Timeout = cfg.BackendTimeout

	switch os.Getenv("SUMMARIZER_TYPE") {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			logger.Error("OPENAI_API_KEY is required when SUMMARIZER_TYPE=openai")
			os.Exit(1)
		}
		return summarizer.NewOpenAI(apiKey, sumConfig)
	default:
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when SUMMARIZER_TYPE is unset or claude")
			os.Exit(1)
		}
		return summarizer.NewClaude(apiKey, sumConfig)
	}
}

func runOnce(ctx context.Context, logger *slog.Logger, cfg appconfig.Config, deps pipeline.Deps, store *statestore.LocalFile) {
	if err := runIngest(ctx, logger, cfg, deps, store); err != nil {
		os.Exit(1)
	}
}

func runOnSchedule(logger *slog.Logger, cfg appconfig.Config, deps pipeline.Deps, store *statestore.LocalFile, schedule scheduleConfig) {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", schedule.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(schedule.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+cfg.BackendTimeout*2)
		defer cancel()
		_ = runIngest(ctx, logger, cfg, deps, store)
	})
	if err != nil {
		logger.Error("failed to schedule ingestion job", slog.String("schedule", schedule.Schedule), slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("ingestion scheduled", slog.String("schedule", schedule.Schedule), slog.String("timezone", schedule.Timezone))
	select {}
}

func runIngest(ctx context.Context, logger *slog.Logger, cfg appconfig.Config, deps pipeline.Deps, store *statestore.LocalFile) error {
	start := time.Now()

	state, err := store.Load(ctx)
	if err != nil {
		logger.Error("failed to load state", slog.Any("error", err))
		return err
	}

	feedDoc, err := deps.Fetcher.Fetch(ctx, cfg.FeedURL)
	if err != nil {
		logger.Error("failed to fetch feed", slog.String("feed_url", cfg.FeedURL), slog.Any("error", err))
		return err
	}

	newState, result, err := pipeline.Run(ctx, feedDoc, cfg.FeedURL, state, deps, pipeline.Config{
		FetchConcurrency:     cfg.FetchConcurrency,
		SummarizeConcurrency: cfg.SummarizeConcurrency,
		IngestConcurrency:    cfg.IngestConcurrency,
		HistoryMaxEntries:    cfg.HistoryMaxEntries,
	})
	if err != nil {
		logger.Error("ingestion run failed", slog.Any("error", err))
		return err
	}

	if err := store.Save(ctx, newState); err != nil {
		logger.Error("failed to persist state", slog.Any("error", err))
		return err
	}

	logger.Info("ingestion run completed",
		slog.Int("discovered", result.DiscoveredCount),
		slog.Int("new", result.NewCount),
		slog.Int("summarized", result.SummarizedCount),
		slog.Int("ingested", result.IngestedCount),
		slog.Duration("duration", time.Since(start)))
	return nil
}
