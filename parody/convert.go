package parody

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToMarkdown flattens extracted article HTML into plain markdown text:
// headings keep their level as a # run, list items become dashes, everything
// else becomes paragraphs. Enough structure for the cleaning prompt, nothing
// more.
func HTMLToMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		switch name := goquery.NodeName(sel); name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(name[1] - '0')
			b.WriteString(strings.Repeat("#", level) + " " + text + "\n\n")
		case "li":
			b.WriteString("- " + text + "\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("no text content")
	}
	return out, nil
}
