package summarizer

import "fmt"

// SummaryParseFailed is raised when the model's response to a summarize
// prompt cannot be coerced into a Summary: malformed JSON, or the required
// executive/technical summary keys are missing.
type SummaryParseFailed struct {
	PostID string
	Reason string
}

func (e *SummaryParseFailed) Error() string {
	return fmt.Sprintf("summary parse failed for post %s: %s", e.PostID, e.Reason)
}
