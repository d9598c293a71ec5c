package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/circuitbreaker"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/resilience/retry"
)

// OpenAI implements Summarizer using OpenAI's chat completion API, wrapped
// with circuit breaker and retry logic per C11.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryPolicy    retry.Policy
	config         Config
	metrics        SummaryMetricsRecorder
}

// NewOpenAI creates an OpenAI summarizer. If config.Model is empty it
// defaults to gpt-4o-mini.
func NewOpenAI(apiKey string, config Config) *OpenAI {
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	if config.BudgetChars <= 0 {
		config.BudgetChars = DefaultBudgetChars
	}

	slog.Info("initialized openai summarizer",
		slog.Int("budget_chars", config.BudgetChars),
		slog.String("model", config.Model))

	return &OpenAI{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryPolicy:    retry.SummarizerPolicy(),
		config:         config,
		metrics:        NewPrometheusSummaryMetrics(),
	}
}

// Summarize implements Summarizer.
func (o *OpenAI) Summarize(ctx context.Context, raw domain.RawContent) (domain.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	prompt := buildSummarizePrompt(raw, o.config.BudgetChars)

	start := time.Now()
	text, err := o.callWithResilience(ctx, prompt)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("openai summarize failed: %w", err)
	}

	summary, err := parseSummaryResponse(raw.PostID, raw, text, o.config.Source)
	o.metrics.RecordDuration(time.Since(start))
	if err != nil {
		return domain.Summary{}, err
	}

	o.metrics.RecordLength(len([]rune(summary.TechnicalSummary)))
	return summary, nil
}

// Answer implements Summarizer.
func (o *OpenAI) Answer(ctx context.Context, question string, docs []domain.RetrievedDoc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	prompt := buildAnswerPrompt(question, docs)
	text, err := o.callWithResilience(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("openai answer failed: %w", err)
	}
	return text, nil
}

func (o *OpenAI) callWithResilience(ctx context.Context, prompt string) (string, error) {
	var result string

	retryErr := retry.Do(ctx, o.retryPolicy, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.call(ctx, prompt)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai circuit breaker open, request rejected")
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})

	return result, retryErr
}

func (o *OpenAI) call(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens: o.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
