// Package extract implements C4: a pure function turning a post's raw HTML
// into cleaned text and heading-segmented sections.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

var articleRootSelectors = []string{
	"article",
	"div[class*=post]",
	"div[class*=article]",
	"div[class*=blog-article]",
	"div[class*=blog-post]",
	"div[class*=content]",
	"div[class*=main-content]",
	"main",
	"body",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Extract turns html into a RawContent for post. html is carried through
// unchanged in the HTML field. Text is never empty: when the article root
// yields no visible text, the post's title is substituted.
func Extract(post domain.Post, html string) domain.RawContent {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.RawContent{
			PostID:   post.ID,
			URL:      post.URL,
			Title:    post.Title,
			HTML:     html,
			Text:     post.Title,
			Sections: []string{post.Title},
		}
	}

	root := findArticleRoot(doc)
	stripNoise(root)

	text := collapseWhitespace(root.Text())
	if text == "" {
		text = post.Title
	}

	sections := extractSections(root)
	if len(sections) == 0 && text != "" {
		sections = []string{text}
	}

	return domain.RawContent{
		PostID:   post.ID,
		URL:      post.URL,
		Title:    post.Title,
		HTML:     html,
		Text:     text,
		Sections: sections,
	}
}

func findArticleRoot(doc *goquery.Document) *goquery.Selection {
	for _, selector := range articleRootSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

func stripNoise(sel *goquery.Selection) {
	sel.Find("script, style, noscript").Remove()
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// extractSections walks the article root's descendants in document order;
// for each heading (h1..h6) it accumulates the text of every <p> element
// that follows it, at any nesting depth, until the next heading, emitting
// "{heading}\n\n{joined paragraphs}".
func extractSections(root *goquery.Selection) []string {
	var sections []string
	var currentHeading string
	var currentParagraphs []string
	hasHeading := false

	flush := func() {
		if !hasHeading {
			return
		}
		body := collapseWhitespace(strings.Join(currentParagraphs, " "))
		sections = append(sections, currentHeading+"\n\n"+body)
	}

	root.Find("*").Each(func(_ int, node *goquery.Selection) {
		tag := goquery.NodeName(node)
		if headingTags[tag] {
			flush()
			currentHeading = collapseWhitespace(node.Text())
			currentParagraphs = nil
			hasHeading = true
			return
		}
		if tag == "p" && hasHeading {
			txt := collapseWhitespace(node.Text())
			if txt != "" {
				currentParagraphs = append(currentParagraphs, txt)
			}
		}
	})
	flush()

	return sections
}
