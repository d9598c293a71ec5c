package summarizer

import "time"

// Config is shared tuning for both LLM adapters.
type Config struct {
	// BudgetChars is the character budget raw article text is truncated
	// to before embedding in the summarize prompt (llm_summary_budget_chars).
	BudgetChars int

	// Model is the provider-specific model identifier.
	Model string

	// MaxTokens bounds the model's response length.
	MaxTokens int

	// Timeout is the per-call deadline.
	Timeout time.Duration

	// Source labels the Summary.Source field (the configured feed name).
	Source string
}

// DefaultConfig returns sensible defaults; Model is left to the caller
// since it is provider-specific.
func DefaultConfig(source string) Config {
	return Config{
		BudgetChars: DefaultBudgetChars,
		MaxTokens:   1024,
		Timeout:     60 * time.Second,
		Source:      source,
	}
}
