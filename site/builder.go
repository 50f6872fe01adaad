package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"parodypress/config"
	"parodypress/textproc"
	"parodypress/types"
)

// scaffoldDir under the template root is copied wholesale into the output
// root before any page is rendered.
const scaffoldDir = "site_template"

// pageTemplates are the template files the builder renders from.
var pageTemplates = []string{"edition.html", "article.html", "qr.html", "subscribe.html", "404.html"}

// Edition is one calendar date's worth of articles. Numbers are assigned
// 1..K in ascending date order and are stable only within one full rebuild.
type Edition struct {
	Number   int
	Date     string
	Articles []types.Article
}

// Builder renders the article store into a complete static site tree.
type Builder struct {
	cfg       config.Config
	templates map[string]*template.Template
	imageSrc  map[string]string // article ID -> source image file
}

// NewBuilder parses the page templates under cfg.TemplateDir.
func NewBuilder(cfg config.Config) (*Builder, error) {
	b := &Builder{
		cfg:       cfg,
		templates: make(map[string]*template.Template, len(pageTemplates)),
		imageSrc:  make(map[string]string),
	}
	for _, name := range pageTemplates {
		t, err := template.ParseFiles(filepath.Join(cfg.TemplateDir, name))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		b.templates[name] = t
	}
	return b, nil
}

// Build loads every record, groups them into editions and renders the full
// page tree plus scaffolding and image assets. A malformed record fails the
// whole build; a missing image only logs a warning.
func (b *Builder) Build() error {
	articles, err := b.LoadArticles()
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return fmt.Errorf("no article records under %s", b.cfg.ArticleDir)
	}
	editions, err := Editions(articles)
	if err != nil {
		return err
	}

	if err := b.copyScaffold(); err != nil {
		return err
	}

	for _, ed := range editions {
		out := filepath.Join(b.cfg.SiteDir, "edition", fmt.Sprintf("%d.html", ed.Number))
		if err := b.renderPage("edition.html", out, b.editionData(ed)); err != nil {
			return err
		}
	}
	latest := editions[len(editions)-1]
	if err := b.renderPage("edition.html", filepath.Join(b.cfg.SiteDir, "index.html"), b.editionData(latest)); err != nil {
		return err
	}

	for _, ed := range editions {
		for _, a := range ed.Articles {
			out := filepath.Join(b.cfg.SiteDir, "article", a.ID+".html")
			if err := b.renderPage("article.html", out, b.articleData(a)); err != nil {
				return err
			}
			b.copyImage(a)
		}
	}

	aux := struct{ BaseURL string }{b.cfg.BaseURL}
	for _, name := range []string{"qr.html", "subscribe.html", "404.html"} {
		if err := b.renderPage(name, filepath.Join(b.cfg.SiteDir, name), aux); err != nil {
			return err
		}
	}
	log.Printf("site: built %d articles across %d editions into %s", len(articles), len(editions), b.cfg.SiteDir)
	return nil
}

// LoadArticles reads every JSON record under the article store, including
// date-named subdirectories. Derived fields are backfilled in memory only:
// reading time is recomputed when absent and the image path is reduced to
// its basename. The returned list sorts featured articles first.
func (b *Builder) LoadArticles() ([]types.Article, error) {
	var articles []types.Article
	err := filepath.WalkDir(b.cfg.ArticleDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read record %s: %w", path, err)
		}
		var a types.Article
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("record %s: %w", path, err)
		}
		if a.ID == "" || a.Title == "" || a.Body == "" || a.Timestamp == "" {
			return fmt.Errorf("record %s: missing required field", path)
		}
		if a.ReadingTime == 0 {
			rt, err := textproc.EstimateReadingTime(a.Body, textproc.WordsPerMinute)
			if err != nil {
				return fmt.Errorf("record %s: reading time: %w", path, err)
			}
			a.ReadingTime = rt
		}
		if a.ImagePath != "" {
			a.ImagePath = filepath.Base(a.ImagePath)
			b.imageSrc[a.ID] = filepath.Join(filepath.Dir(path), a.ImagePath)
		}
		articles = append(articles, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	SortFeaturedFirst(articles)
	return articles, nil
}

// Editions groups articles by calendar date and numbers the groups 1..K in
// ascending date order. Each group sorts featured first, stable otherwise.
func Editions(articles []types.Article) ([]Edition, error) {
	byDate := make(map[string][]types.Article)
	for _, a := range articles {
		ts, err := a.Time()
		if err != nil {
			return nil, fmt.Errorf("article %s: bad timestamp %q: %w", a.ID, a.Timestamp, err)
		}
		date := ts.Format("2006-01-02")
		byDate[date] = append(byDate[date], a)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	editions := make([]Edition, 0, len(dates))
	for i, d := range dates {
		group := byDate[d]
		SortFeaturedFirst(group)
		editions = append(editions, Edition{Number: i + 1, Date: d, Articles: group})
	}
	return editions, nil
}

// SortFeaturedFirst moves featured articles to the front, preserving the
// relative order of everything else.
func SortFeaturedFirst(articles []types.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Featured() && !articles[j].Featured()
	})
}

type editionPage struct {
	Edition
	BaseURL string
}

func (b *Builder) editionData(ed Edition) editionPage {
	return editionPage{Edition: ed, BaseURL: b.cfg.BaseURL}
}

type articlePage struct {
	types.Article
	BodyHTML       template.HTML
	ReadingMinutes int
	BaseURL        string
}

func (b *Builder) articleData(a types.Article) articlePage {
	return articlePage{
		Article:        a,
		BodyHTML:       template.HTML(textproc.MarkdownToHTML(a.Body)),
		ReadingMinutes: int(math.Ceil(a.ReadingTime)),
		BaseURL:        b.cfg.BaseURL,
	}
}

func (b *Builder) renderPage(name, outPath string, data any) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := b.templates[name].Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", outPath, err)
	}
	return f.Close()
}

// copyImage places the article's image under static/img. A missing source
// image is a warning, not a build failure.
func (b *Builder) copyImage(a types.Article) {
	if a.ImagePath == "" {
		return
	}
	src, ok := b.imageSrc[a.ID]
	if !ok {
		src = filepath.Join(b.cfg.ArticleDir, a.ImagePath)
	}
	dst := filepath.Join(b.cfg.SiteDir, "static", "img", a.ImagePath)
	if err := copyFile(src, dst); err != nil {
		log.Printf("site: warning: image for %s: %v", a.ID, err)
	}
}

// copyScaffold copies the static template scaffolding into the output root.
func (b *Builder) copyScaffold() error {
	root := filepath.Join(b.cfg.TemplateDir, scaffoldDir)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(b.cfg.SiteDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		return copyFile(path, dst)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
