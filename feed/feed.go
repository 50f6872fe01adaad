package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"parodypress/config"
	"parodypress/types"
)

// descriptionLimit caps the body excerpt used when a record has no overview.
const descriptionLimit = 200

// Item is one rendered RSS entry. All fields are already XML-escaped.
type Item struct {
	Title       string
	Link        string
	PubDate     string
	Description string
	BodyHTML    string
}

type channel struct {
	Title       string
	Link        string
	Description string
	BuildDate   string
	Items       []Item
}

// Builder renders the article record set into an RSS 2.0 feed.xml.
type Builder struct {
	cfg  config.Config
	tmpl *template.Template
}

func NewBuilder(cfg config.Config) (*Builder, error) {
	t, err := template.ParseFiles(filepath.Join(cfg.TemplateDir, "feed.xml"))
	if err != nil {
		return nil, fmt.Errorf("parse feed template: %w", err)
	}
	return &Builder{cfg: cfg, tmpl: t}, nil
}

// Write renders the most recent articles, capped to the configured limit,
// into feed.xml under the site output dir.
func (b *Builder) Write(articles []types.Article) error {
	sorted := make([]types.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return parseLenient(sorted[i].Timestamp).After(parseLenient(sorted[j].Timestamp))
	})

	limit := b.cfg.FeedLimit
	if limit <= 0 {
		limit = config.DefaultFeedLimit
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	items := make([]Item, 0, len(sorted))
	for _, a := range sorted {
		items = append(items, b.item(a))
	}

	data := channel{
		Title:       "ParodyPress",
		Link:        b.cfg.BaseURL,
		Description: "Satirical news, freshly generated.",
		BuildDate:   time.Now().UTC().Format(time.RFC1123Z),
		Items:       items,
	}

	out := filepath.Join(b.cfg.SiteDir, "feed.xml")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := b.tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render feed: %w", err)
	}
	return f.Close()
}

func (b *Builder) item(a types.Article) Item {
	return Item{
		Title:       escape(a.Title),
		Link:        fmt.Sprintf("%s/article/%s.html", strings.TrimRight(b.cfg.BaseURL, "/"), a.ID),
		PubDate:     PubDate(a.Timestamp),
		Description: escape(Description(a)),
		BodyHTML:    escape(wrapParagraphs(a.Body)),
	}
}

// parseLenient parses a stored timestamp: the store format first, then
// ISO-8601, falling back to the current time.
func parseLenient(ts string) time.Time {
	if t, err := time.Parse(types.TimestampFormat, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Now()
}

// PubDate converts a stored timestamp to RFC-822 form.
func PubDate(ts string) string {
	return parseLenient(ts).UTC().Format(time.RFC1123Z)
}

// Description prefers the overview, falling back to the first characters of
// the body with an ellipsis.
func Description(a types.Article) string {
	if a.Overview != "" {
		return a.Overview
	}
	runes := []rune(a.Body)
	if len(runes) <= descriptionLimit {
		return a.Body
	}
	return string(runes[:descriptionLimit]) + "…"
}

// wrapParagraphs turns blank-line separated body text into <p> blocks.
func wrapParagraphs(body string) string {
	var b strings.Builder
	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(para)
		b.WriteString("</p>\n")
	}
	return b.String()
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
