// Package summarizer implements C5: the LLM-backed port used by the
// ingestion pipeline to turn raw article content into a structured Summary,
// and by the QA orchestrator to ground an answer in retrieved summaries.
package summarizer

import (
	"context"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// Summarizer is the C5 port: two operations, both synchronous from the
// caller's perspective but permitted to suspend on I/O.
type Summarizer interface {
	// Summarize produces a structured Summary from a post's extracted
	// content.
	Summarize(ctx context.Context, raw domain.RawContent) (domain.Summary, error)

	// Answer grounds a free-form question in the given retrieved
	// documents, instructing the model to answer only from context.
	Answer(ctx context.Context, question string, docs []domain.RetrievedDoc) (string, error)
}
