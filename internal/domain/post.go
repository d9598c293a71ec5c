// Package domain defines the core data types shared across the ingestion
// and QA engine: Post, RawContent, Summary, RetrievedDoc, IngestionResult
// and State. None of these types mutate after construction.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Post is a single discovered feed entry.
type Post struct {
	ID             string
	URL            string
	Title          string
	PublishedAt    *time.Time
	Tags           []string
	Source         string
	InlineContent  string
	HasInlineContent bool
}

// PostID derives the stable, deterministic id for a URL: the hex-encoded
// SHA-256 digest. Equal URLs always produce equal ids.
func PostID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// NewPost builds a Post with a normalized tag list and a derived id.
// Callers are expected to have already resolved url to an absolute form.
func NewPost(url, title string, publishedAt *time.Time, tags []string, source, inlineContent string) Post {
	return Post{
		ID:               PostID(url),
		URL:              url,
		Title:            strings.TrimSpace(title),
		PublishedAt:      publishedAt,
		Tags:             normalizeTags(tags),
		Source:           source,
		InlineContent:    inlineContent,
		HasInlineContent: strings.TrimSpace(inlineContent) != "",
	}
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
