package parody

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"

	"parodypress/config"
	"parodypress/llm"
	"parodypress/types"
)

const (
	// fetchTimeout bounds each source-page retrieval.
	fetchTimeout = 10 * time.Second
	// minPool is the smallest headline pool candidates are sampled from.
	minPool = 30
)

// CleanArticle is the normalized article a generation call extracts from a
// fetched source page.
type CleanArticle struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Author string `json:"author"`
}

// Pipeline derives parody article ideas from real news stories.
type Pipeline struct {
	cfg     config.Config
	prompts *config.PromptSet
	client  *llm.Client
	source  HeadlineSource
	seen    *SeenFilter
}

// NewPipeline builds a parody ingestion pipeline. seen may be nil.
func NewPipeline(cfg config.Config, prompts *config.PromptSet, client *llm.Client, source HeadlineSource, seen *SeenFilter) *Pipeline {
	return &Pipeline{cfg: cfg, prompts: prompts, client: client, source: source, seen: seen}
}

// TopStoryOutlines produces up to n parody ideas, each derived from a real
// headline. Candidates are processed in parallel and a failure at any
// sub-step drops only that candidate. workers <= 0 sizes the pool to the
// candidate count.
func (p *Pipeline) TopStoryOutlines(ctx context.Context, n, workers int) ([]types.Idea, error) {
	if n <= 0 {
		return nil, nil
	}

	pool := minPool
	if 3*n > pool {
		pool = 3 * n
	}
	headlines, err := p.source.TopHeadlines(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("headline pool: %w", err)
	}

	fresh := headlines[:0:0]
	for _, h := range headlines {
		if h.URL == "" || p.seen.Seen(ctx, h.URL) {
			continue
		}
		fresh = append(fresh, h)
	}

	candidates := sample(fresh, n)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidate headlines available")
	}

	if workers <= 0 || workers > len(candidates) {
		workers = len(candidates)
	}

	results := make([]*types.Idea, len(candidates))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, h := range candidates {
		wg.Add(1)
		go func(i int, h Headline) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			idea, err := p.storyOutline(ctx, h)
			if err != nil {
				log.Printf("parody: dropping %s: %v", h.URL, err)
				return
			}
			results[i] = &idea
		}(i, h)
	}
	wg.Wait()

	ideas := make([]types.Idea, 0, len(candidates))
	for _, idea := range results {
		if idea == nil {
			continue
		}
		p.seen.Mark(ctx, idea.SourceURL)
		ideas = append(ideas, *idea)
	}
	return ideas, nil
}

// storyOutline runs one candidate end to end: fetch, convert, clean,
// transform, extract.
func (p *Pipeline) storyOutline(ctx context.Context, h Headline) (types.Idea, error) {
	page, err := readability.FromURL(h.URL, fetchTimeout)
	if err != nil {
		return types.Idea{}, fmt.Errorf("fetch page: %w", err)
	}

	md, err := HTMLToMarkdown(page.Content)
	if err != nil {
		// Fall back to the extractor's own plain text.
		md = strings.TrimSpace(page.TextContent)
		if md == "" {
			return types.Idea{}, fmt.Errorf("convert page: %w", err)
		}
	}

	clean, err := p.cleanArticle(ctx, h, md)
	if err != nil {
		return types.Idea{}, fmt.Errorf("clean article: %w", err)
	}

	brainstorm, err := p.parodyBrainstorm(ctx, clean)
	if err != nil {
		return types.Idea{}, fmt.Errorf("parody outline: %w", err)
	}

	outline, err := ExtractStepFive(brainstorm)
	if err != nil {
		return types.Idea{}, err
	}
	return types.NewParodyIdea(outline, h.URL), nil
}

// cleanArticle extracts a normalized title and body from page markdown,
// seeded with the original headline as hints.
func (p *Pipeline) cleanArticle(ctx context.Context, h Headline, md string) (CleanArticle, error) {
	hints := config.Render(p.prompts.Parody["clean"], map[string]string{
		"title":       h.Title,
		"description": h.Description,
	})
	text, err := p.client.ChatJSON(ctx, p.cfg.JSONModel, 0,
		llm.System(hints),
		llm.User(md),
	)
	if err != nil {
		return CleanArticle{}, err
	}

	var clean CleanArticle
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &clean); err != nil {
		return CleanArticle{}, fmt.Errorf("parse: %w", err)
	}
	if clean.Title == "" || clean.Body == "" {
		return CleanArticle{}, fmt.Errorf("cleaned article missing title or body")
	}
	return clean, nil
}

// parodyBrainstorm transforms a cleaned article into the multi-step parody
// brainstorm document.
func (p *Pipeline) parodyBrainstorm(ctx context.Context, clean CleanArticle) (string, error) {
	prompt := config.Render(p.prompts.Parody["convert"], map[string]string{
		"title":   clean.Title,
		"article": clean.Body,
	})
	return p.client.Chat(ctx, p.cfg.HeavyModel, 0.3,
		llm.System(p.prompts.Parody["convert_system"]),
		llm.User(prompt),
	)
}

var stepHeadingRe = regexp.MustCompile(`(?mi)^\s*(?:#+\s*)?(?:\*\*\s*)?step\s+(\d+)`)

// ExtractStepFive slices the "Step 5" section out of a numbered-step
// brainstorm document: from its heading up to the next numbered step heading
// or the end of the text.
func ExtractStepFive(text string) (string, error) {
	locs := stepHeadingRe.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range locs {
		if text[loc[2]:loc[3]] != "5" {
			continue
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return strings.TrimSpace(text[loc[0]:end]), nil
	}
	return "", fmt.Errorf("no step 5 section in brainstorm document")
}

// sample picks up to n headlines uniformly without replacement.
func sample(headlines []Headline, n int) []Headline {
	if n >= len(headlines) {
		out := make([]Headline, len(headlines))
		copy(out, headlines)
		return out
	}
	out := make([]Headline, 0, n)
	for _, i := range rand.Perm(len(headlines))[:n] {
		out = append(out, headlines[i])
	}
	return out
}
