// Package qa implements C8: the QA orchestrator that grounds a free-form
// question in retrieved summaries before asking the LLM to answer it.
package qa

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/backend"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/summarizer"
)

// DefaultK is the default number of documents requested from the backend.
const DefaultK = 8

// EmptyQuestionRefusal is returned unchanged when the trimmed question is
// empty.
const EmptyQuestionRefusal = "Please ask a question about the blog content."

// NoContextRefusal is returned when retrieval finds nothing relevant; the
// model is never called in this case.
const NoContextRefusal = "I couldn't find any relevant blog content to answer that question."

// Orchestrator answers questions by retrieving relevant summaries and
// grounding the LLM's answer in them. It never reranks and never
// truncates the retrieved docs list itself.
type Orchestrator struct {
	Backend    backend.Backend
	Summarizer summarizer.Summarizer
}

// New builds an Orchestrator.
func New(b backend.Backend, s summarizer.Summarizer) *Orchestrator {
	return &Orchestrator{Backend: b, Summarizer: s}
}

// Answer implements §4.7 exactly: an empty question or an empty retrieval
// result short-circuits to a fixed refusal without invoking the model.
func (o *Orchestrator) Answer(ctx context.Context, question string, k int) (string, []domain.RetrievedDoc, error) {
	requestID := uuid.NewString()

	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		slog.Info("qa: empty question, refusing", slog.String("request_id", requestID))
		return EmptyQuestionRefusal, nil, nil
	}

	if k <= 0 {
		k = DefaultK
	}

	docs, err := o.Backend.Retrieve(ctx, trimmed, k)
	if err != nil {
		slog.Error("qa: retrieve failed", slog.String("request_id", requestID), slog.Any("error", err))
		return "", nil, err
	}

	if len(docs) == 0 {
		slog.Info("qa: no relevant documents found, refusing", slog.String("request_id", requestID))
		return NoContextRefusal, nil, nil
	}

	answer, err := o.Summarizer.Answer(ctx, trimmed, docs)
	if err != nil {
		slog.Error("qa: answer failed", slog.String("request_id", requestID), slog.Any("error", err))
		return "", nil, err
	}

	slog.Info("qa: answered", slog.String("request_id", requestID), slog.Int("docs", len(docs)))
	return answer, docs, nil
}
