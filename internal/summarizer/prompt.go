package summarizer

import (
	"fmt"
	"strings"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
	"github.com/TomBombadyl/nvidia-blog-agent/internal/utils/text"
)

// DefaultBudgetChars is the default truncation threshold for raw article
// text embedded in a summarize prompt.
const DefaultBudgetChars = 4000

const summarizePromptTemplate = `Summarize the following article. Respond with a strict JSON object and nothing else, containing exactly these keys:

- "executive_summary": a short, plain-language summary (at least a couple of sentences)
- "technical_summary": a more detailed, technically precise summary (at least a few sentences)
- "bullet_points": an array of short strings, the key takeaways
- "keywords": an array of short lowercase strings

Title: %s
URL: %s

Article text:
%s
`

// buildSummarizePrompt truncates raw.Text to budgetChars before embedding
// it, then appends sections while the budget allows.
func buildSummarizePrompt(raw domain.RawContent, budgetChars int) string {
	if budgetChars <= 0 {
		budgetChars = DefaultBudgetChars
	}

	body := raw.Text
	if text.CountRunes(body) > budgetChars {
		body = truncateRunes(body, budgetChars)
	} else {
		remaining := budgetChars - text.CountRunes(body)
		for _, section := range raw.Sections {
			if remaining <= 0 {
				break
			}
			addition := "\n\n" + section
			if text.CountRunes(addition) > remaining {
				addition = truncateRunes(addition, remaining)
			}
			body += addition
			remaining -= text.CountRunes(addition)
		}
	}

	return fmt.Sprintf(summarizePromptTemplate, raw.Title, raw.URL, body)
}

// truncateRunes cuts s to at most n runes, never splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

const answerPromptHeader = `Answer the question using only the information in the provided blog post context below. If the context does not contain enough information to answer, say so plainly rather than guessing.

Question: %s

Context:
`

// buildAnswerPrompt renders the question plus, for each retrieved doc, a
// header of its title and URL followed by its snippet.
func buildAnswerPrompt(question string, docs []domain.RetrievedDoc) string {
	var b strings.Builder
	fmt.Fprintf(&b, answerPromptHeader, question)

	for i, doc := range docs {
		fmt.Fprintf(&b, "\n[%d] %s (%s)\n%s\n", i+1, doc.Title, doc.URL, doc.Snippet)
	}

	return b.String()
}
