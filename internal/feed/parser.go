// Package feed parses RSS/Atom feed documents (and, failing that, an HTML
// index page) into an ordered sequence of domain.Post values. The parser
// never raises: a syntactically broken feed yields the empty sequence
// rather than an error, and individual entries lacking a URL or title are
// dropped silently.
package feed

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// candidateContainers lists the HTML-fallback container selectors in
// declared priority order.
var candidateContainers = []string{
	"article",
	"div.post",
	"div.article",
	"div.blog-post",
	"div.blog-article",
	"div",
}

// Parse turns a feed document into an ordered sequence of Posts. source is
// used as the default Post.Source label. The parser is tolerant: malformed
// documents and malformed entries never produce an error, only fewer posts.
func Parse(doc string, source string) []domain.Post {
	switch detectFormat(doc) {
	case formatAtom, formatRSS:
		return parseSyndication(doc, source)
	default:
		return parseHTMLIndex(doc, source)
	}
}

func parseSyndication(doc, source string) []domain.Post {
	fp := gofeed.NewParser()
	parsed, err := fp.ParseString(doc)
	if err != nil || parsed == nil {
		return []domain.Post{}
	}

	posts := make([]domain.Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		rawURL := strings.TrimSpace(item.Link)
		title := strings.TrimSpace(item.Title)
		if rawURL == "" || title == "" {
			continue
		}

		resolved, ok := resolveAbsoluteURL(rawURL)
		if !ok {
			continue
		}

		publishedAt := item.PublishedParsed
		if publishedAt == nil {
			publishedAt = item.UpdatedParsed
		}

		inline := strings.TrimSpace(item.Content)
		if inline == "" {
			inline = strings.TrimSpace(item.Description)
		}

		post := domain.NewPost(resolved, title, publishedAt, item.Categories, source, inline)
		posts = append(posts, post)
	}

	return posts
}

func parseHTMLIndex(doc, source string) []domain.Post {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return []domain.Post{}
	}

	posts := make([]domain.Post, 0)
	seen := make(map[string]struct{})

	for _, selector := range candidateContainers {
		root.Find(selector).EachWithBreak(func(_ int, container *goquery.Selection) bool {
			anchor := container.Find("a[href]").First()
			if anchor.Length() == 0 {
				return true
			}
			href, exists := anchor.Attr("href")
			if !exists {
				return true
			}
			title := strings.TrimSpace(anchor.Text())
			if title == "" {
				return true
			}
			resolved, ok := resolveAbsoluteURL(strings.TrimSpace(href))
			if !ok {
				return true
			}
			if _, dup := seen[resolved]; dup {
				return true
			}
			seen[resolved] = struct{}{}
			posts = append(posts, domain.NewPost(resolved, title, nil, nil, source, ""))
			return true
		})
		if len(posts) > 0 {
			break
		}
	}

	return posts
}

func resolveAbsoluteURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	return u.String(), true
}
