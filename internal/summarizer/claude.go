package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/circuitbreaker"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/retry"
)

// Claude implements Summarizer using Anthropic's Claude API, wrapped with
// circuit breaker and retry logic per C11.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryPolicy    retry.Policy
	config         Config
	metrics        SummaryMetricsRecorder
}

// NewClaude creates a Claude summarizer. If config.Model is empty it
// defaults to Claude Sonnet.
func NewClaude(apiKey string, config Config) *Claude {
	if config.Model == "" {
		config.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	if config.BudgetChars <= 0 {
		config.BudgetChars = DefaultBudgetChars
	}

	slog.Info("initialized claude summarizer",
		slog.Int("budget_chars", config.BudgetChars),
		slog.String("model", config.Model))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryPolicy:    retry.SummarizerPolicy(),
		config:         config,
		metrics:        NewPrometheusSummaryMetrics(),
	}
}

// Summarize implements Summarizer.
func (c *Claude) Summarize(ctx context.Context, raw domain.RawContent) (domain.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	prompt := buildSummarizePrompt(raw, c.config.BudgetChars)

	start := time.Now()
	text, err := c.callWithResilience(ctx, prompt)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("claude summarize failed: %w", err)
	}

	summary, err := parseSummaryResponse(raw.PostID, raw, text, c.config.Source)
	c.metrics.RecordDuration(time.Since(start))
	if err != nil {
		return domain.Summary{}, err
	}

	c.metrics.RecordLength(len([]rune(summary.TechnicalSummary)))
	return summary, nil
}

// Answer implements Summarizer.
func (c *Claude) Answer(ctx context.Context, question string, docs []domain.RetrievedDoc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	prompt := buildAnswerPrompt(question, docs)
	text, err := c.callWithResilience(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("claude answer failed: %w", err)
	}
	return text, nil
}

func (c *Claude) callWithResilience(ctx context.Context, prompt string) (string, error) {
	var result string

	retryErr := retry.Do(ctx, c.retryPolicy, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.call(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude circuit breaker open, request rejected")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})

	return result, retryErr
}

func (c *Claude) call(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}
	return textBlock.Text, nil
}
