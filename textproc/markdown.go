package textproc

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`(?m)^(#{1,6})\s(.+)$`)
	boldRe    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe  = regexp.MustCompile(`\*(.+?)\*`)
	hruleRe   = regexp.MustCompile(`---`)
)

// MarkdownToHTML renders the constrained markdown subset article bodies use:
// headings by leading # run length, **bold**, *italic*, newlines as line
// breaks, and --- as a horizontal rule. Each rule is a whole-text
// substitution applied in that order. Not a general markdown implementation.
func MarkdownToHTML(text string) string {
	text = headingRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := headingRe.FindStringSubmatch(m)
		level := len(parts[1])
		return fmt.Sprintf("<h%d>%s</h%d>", level, parts[2], level)
	})
	text = boldRe.ReplaceAllString(text, "<strong>$1</strong>")
	text = italicRe.ReplaceAllString(text, "<em>$1</em>")
	text = strings.ReplaceAll(text, "\n", "<br>")
	text = strings.ReplaceAll(text, "</h3><br><br>", "</h3>")
	text = hruleRe.ReplaceAllString(text, "<hr>")
	return text
}
