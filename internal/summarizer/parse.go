package summarizer

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

var codeFenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\\n?(.*?)```")

type summaryPayload struct {
	ExecutiveSummary string   `json:"executive_summary"`
	TechnicalSummary string   `json:"technical_summary"`
	BulletPoints     []string `json:"bullet_points"`
	Keywords         []string `json:"keywords"`
}

// parseSummaryResponse implements §4.4's forgiving parser: strip code
// fences of any language tag, locate the first balanced {...} substring,
// parse it as JSON, and default missing bullet_points/keywords to empty.
// Missing executive_summary/technical_summary or malformed JSON fails with
// SummaryParseFailed.
func parseSummaryResponse(postID string, raw domain.RawContent, text string, source string) (domain.Summary, error) {
	candidate := stripCodeFences(text)

	jsonText, ok := firstBalancedBraces(candidate)
	if !ok {
		return domain.Summary{}, &SummaryParseFailed{PostID: postID, Reason: "no balanced JSON object found"}
	}

	var payload summaryPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return domain.Summary{}, &SummaryParseFailed{PostID: postID, Reason: "invalid json: " + err.Error()}
	}

	if strings.TrimSpace(payload.ExecutiveSummary) == "" || strings.TrimSpace(payload.TechnicalSummary) == "" {
		return domain.Summary{}, &SummaryParseFailed{PostID: postID, Reason: "missing executive_summary or technical_summary"}
	}

	summary, err := domain.NewSummary(postID, raw.Title, raw.URL, nil,
		payload.ExecutiveSummary, payload.TechnicalSummary, payload.BulletPoints, payload.Keywords, source)
	if err != nil {
		return domain.Summary{}, &SummaryParseFailed{PostID: postID, Reason: err.Error()}
	}
	return summary, nil
}

func stripCodeFences(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// firstBalancedBraces finds the first top-level {...} substring, tolerating
// braces nested inside string literals by tracking quote state.
func firstBalancedBraces(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
