package sitemap

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Rule maps pages to crawl hints by substring match against the
// extension-stripped page path. Rules are tried in order; the first match
// wins.
type Rule struct {
	Pattern    string
	ChangeFreq string
	Priority   float64
}

// DefaultRules covers the page kinds the site builder emits. Anything else
// falls back to weekly at priority 0.5.
var DefaultRules = []Rule{
	{Pattern: "index", ChangeFreq: "daily", Priority: 1.0},
	{Pattern: "article/", ChangeFreq: "weekly", Priority: 0.8},
	{Pattern: "edition/", ChangeFreq: "monthly", Priority: 0.6},
	{Pattern: "subscribe", ChangeFreq: "monthly", Priority: 0.5},
	{Pattern: "qr", ChangeFreq: "monthly", Priority: 0.5},
}

var fallbackRule = Rule{ChangeFreq: "weekly", Priority: 0.5}

// Entry is one <url> element.
type Entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

// Generate scans the rendered site tree for HTML pages and writes a
// sitemap.xml into its root. Page URLs drop the .html suffix and the index
// page maps to the site root.
func Generate(siteDir, baseURL string, rules []Rule) error {
	if rules == nil {
		rules = DefaultRules
	}
	base := strings.TrimRight(baseURL, "/")

	var entries []Entry
	err := filepath.WalkDir(siteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		rel, err := filepath.Rel(siteDir, path)
		if err != nil {
			return err
		}
		page := strings.TrimSuffix(filepath.ToSlash(rel), ".html")

		info, err := d.Info()
		if err != nil {
			return err
		}
		rule := matchRule(page, rules)
		entries = append(entries, Entry{
			Loc:        pageURL(base, page),
			LastMod:    info.ModTime().Format("2006-01-02"),
			ChangeFreq: rule.ChangeFreq,
			Priority:   strconv.FormatFloat(rule.Priority, 'f', 1, 64),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan site tree: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Loc < entries[j].Loc })

	raw, err := xml.MarshalIndent(urlSet{Xmlns: xmlns, URLs: entries}, "", "  ")
	if err != nil {
		return err
	}
	out := append([]byte(xml.Header), raw...)
	out = append(out, '\n')
	return os.WriteFile(filepath.Join(siteDir, "sitemap.xml"), out, 0o644)
}

func matchRule(page string, rules []Rule) Rule {
	for _, r := range rules {
		if strings.Contains(page, r.Pattern) {
			return r
		}
	}
	return fallbackRule
}

func pageURL(base, page string) string {
	if page == "index" {
		return base + "/"
	}
	return base + "/" + page
}
