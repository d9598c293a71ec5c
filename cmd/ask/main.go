// Command ask answers a free-form question from the command line, grounded
// in the indexed corpus via the QA orchestrator (C8), the response cache
// and session overlay (C10).
//
// Usage: ask [--k N] [--session ID] [--output json] "question"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/backend"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/cache"
	appconfig "github.com/TomBombadyl/nvidia-blog-agent/internal/config"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/observability/logging"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/qa"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/summarizer"
)

// askOutput is the JSON output shape for the --output json flag.
type askOutput struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []sourceOutput `json:"sources"`
}

type sourceOutput struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

func main() {
	var (
		k            int
		sessionID    string
		outputFormat string
	)
	flag.IntVar(&k, "k", 0, "number of retrieved documents to ground the answer in (0 = use the default of 8)")
	flag.StringVar(&sessionID, "session", "", "session id to append this query to the session log")
	flag.StringVar(&outputFormat, "output", "text", "output format: text or json")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Error: question is required")
		fmt.Fprintln(os.Stderr, "Usage: ask [--k N] [--session ID] [--output json] \"question\"")
		os.Exit(1)
	}
	question := args[0]

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := appconfig.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	answerer, err := setupAnswerer(logger, cfg)
	if err != nil {
		logger.Error("failed to wire QA dependencies", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BackendTimeout+30*time.Second)
	defer cancel()

	answer, docs, err := answerer.Answer(ctx, question, k, sessionID)
	if err != nil {
		logger.Error("ask failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if outputFormat == "json" {
		printJSON(question, answer, docs)
	} else {
		printText(question, answer, docs)
	}
}

func setupAnswerer(logger *slog.Logger, cfg appconfig.Config) (*cache.Cache, error) {
	be, err := setupBackend(cfg)
	if err != nil {
		return nil, err
	}
	sum := setupSummarizer(logger, cfg)
	orchestrator := qa.New(be, sum)

	compute := func(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
		return orchestrator.Answer(ctx, question, k)
	}

	return cache.New(compute, cache.Config{
		MaxSize:       cfg.CacheMaxSize,
		TTL:           cfg.CacheTTL,
		SessionTTL:    cfg.SessionTTL,
		SessionLogMax: cfg.SessionLogMax,
		Metrics:       cache.NewPrometheusCacheMetrics(),
	}), nil
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

func printText(question, answer string, docs []domain.RetrievedDoc) {
	fmt.Printf("Question: %s\n\n", question)
	fmt.Printf("Answer:\n%s\n\n", answer)
	if len(docs) > 0 {
		fmt.Println("Sources:")
		for i, d := range docs {
			fmt.Printf("%d. %s (score %.2f)\n   %s\n", i+1, d.Title, d.Score, d.URL)
		}
	}
}

func printJSON(question, answer string, docs []domain.RetrievedDoc) {
	sources := make([]sourceOutput, len(docs))
	for i, d := range docs {
		sources[i] = sourceOutput{Title: d.Title, URL: d.URL, Score: d.Score}
	}
	out := askOutput{Question: question, Answer: answer, Sources: sources}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}
