package summarizer

import (
	"context"
	"strings"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// NoOp is a Summarizer that echoes deterministic, fixture-shaped output
// without calling an LLM. Useful for local development and for pipeline
// tests that don't want to exercise a real provider adapter.
type NoOp struct {
	Source string
}

// Summarize implements Summarizer by deriving a summary directly from the
// raw text instead of calling a model.
func (n NoOp) Summarize(_ context.Context, raw domain.RawContent) (domain.Summary, error) {
	executive := raw.Text
	if len(executive) > 200 {
		executive = executive[:200]
	}
	if len(executive) < 10 {
		executive = executive + strings.Repeat(".", 10-len(executive))
	}

	technical := raw.Text
	if len(technical) < 50 {
		technical = technical + strings.Repeat(" detail", (50-len(technical))/7+1)
	}

	return domain.NewSummary(raw.PostID, raw.Title, raw.URL, nil, executive, technical, nil, nil, n.Source)
}

// Answer implements Summarizer by concatenating the snippets of the
// provided docs.
func (n NoOp) Answer(_ context.Context, question string, docs []domain.RetrievedDoc) (string, error) {
	var b strings.Builder
	b.WriteString("Based on the provided context:\n")
	for _, doc := range docs {
		b.WriteString("- ")
		b.WriteString(doc.Snippet)
		b.WriteString("\n")
	}
	return b.String(), nil
}
