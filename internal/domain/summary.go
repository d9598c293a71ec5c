package domain

import (
	"fmt"
	"strings"
	"time"
)

// Summary is the structured LLM output for one post's content. Constructed
// once by the summarizer and never mutated afterward.
type Summary struct {
	PostID            string
	Title             string
	URL               string
	PublishedAt       *time.Time
	ExecutiveSummary  string
	TechnicalSummary  string
	Bullets           []string
	Keywords          []string
	Source            string
}

// NewSummary validates the length floors on the two free-text summaries and
// normalizes keywords (lowercase, deduplicated, first-seen order preserved)
// before returning a Summary. These floors are enforced once at
// construction; callers never see a Summary that violates them.
func NewSummary(postID, title, url string, publishedAt *time.Time, executive, technical string, bullets, keywords []string, source string) (Summary, error) {
	if len(executive) < 10 {
		return Summary{}, fmt.Errorf("%w: got %d chars", ErrExecutiveSummaryTooShort, len(executive))
	}
	if len(technical) < 50 {
		return Summary{}, fmt.Errorf("%w: got %d chars", ErrTechnicalSummaryTooShort, len(technical))
	}

	return Summary{
		PostID:           postID,
		Title:            title,
		URL:              url,
		PublishedAt:      publishedAt,
		ExecutiveSummary: executive,
		TechnicalSummary: technical,
		Bullets:          append([]string(nil), bullets...),
		Keywords:         normalizeKeywords(keywords),
		Source:           source,
	}, nil
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// ToIndexableDocument renders a deterministic text representation of the
// summary for indexing in a retrieval corpus.
func (s Summary) ToIndexableDocument() string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString("\n")
	b.WriteString(s.URL)
	b.WriteString("\n\n")
	b.WriteString(s.ExecutiveSummary)
	b.WriteString("\n\n")
	b.WriteString(s.TechnicalSummary)
	if len(s.Bullets) > 0 {
		b.WriteString("\n\n")
		for _, bullet := range s.Bullets {
			b.WriteString("- ")
			b.WriteString(bullet)
			b.WriteString("\n")
		}
	}
	if len(s.Keywords) > 0 {
		b.WriteString("\nKeywords: ")
		b.WriteString(strings.Join(s.Keywords, ", "))
	}
	return b.String()
}

// ToMetadata renders the fixed metadata mapping carried alongside the
// indexable document in a retrieval backend.
func (s Summary) ToMetadata() map[string]interface{} {
	var published interface{}
	if s.PublishedAt != nil {
		published = s.PublishedAt.Format(time.RFC3339)
	}
	return map[string]interface{}{
		"post_id":      s.PostID,
		"title":        s.Title,
		"url":          s.URL,
		"published_at": published,
		"keywords":     s.Keywords,
		"source":       s.Source,
	}
}
