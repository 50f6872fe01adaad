package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"parodypress/config"
	"parodypress/llm"
	"parodypress/types"
)

func stageError(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}

// Ideas requests n short article ideas in a single structured call. Any call
// or parse anomaly yields an empty list; there are no retries.
func (g *Generator) Ideas(ctx context.Context, n int) ([]types.Idea, error) {
	prompt := config.Render(g.prompts.Ideas["generator"], map[string]string{
		"n": strconv.Itoa(n),
	})
	text, err := g.client.ChatJSON(ctx, g.cfg.HeavyModel, 1, llm.System(prompt))
	if err != nil {
		return nil, fmt.Errorf("idea generation: %w", err)
	}

	var parsed struct {
		Ideas []types.Idea `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("idea generation: parse: %w", err)
	}
	return parsed.Ideas, nil
}

// Outline produces the short brainstorm document between idea and body.
func (g *Generator) Outline(ctx context.Context, idea types.Idea) (string, error) {
	prompt := config.Render(g.prompts.Article["outline"], map[string]string{
		"idea": strings.TrimSpace(idea.Prompt()),
	})
	return g.client.Chat(ctx, g.cfg.HeavyModel, 0.2, llm.System(prompt))
}

// Body generates raw article text from a uniformly chosen generator variant
// and reports which variant produced it.
func (g *Generator) Body(ctx context.Context, idea types.Idea, outline string, numWords int) (string, string, error) {
	variants := g.prompts.BodyVariants()
	if len(variants) == 0 {
		return "", "", fmt.Errorf("no body generator prompts registered")
	}
	variant := variants[rand.Intn(len(variants))]

	prompt := config.Render(g.prompts.Article[variant], map[string]string{
		"idea":      idea.Prompt(),
		"outline":   outline,
		"num_words": strconv.Itoa(numWords),
	})
	text, err := g.client.Chat(ctx, g.cfg.HeavyModel, 0,
		llm.System(g.prompts.System["persona"]),
		llm.User(prompt),
	)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(text), variant, nil
}

// draft is the structured object extracted from raw body text.
type draft struct {
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Body     string `json:"body"`
}

// extractDraft converts raw article text into the structured draft. A parse
// failure or a missing required field fails the record.
func (g *Generator) extractDraft(ctx context.Context, raw string) (draft, error) {
	prompt := config.Render(g.prompts.Article["extract"], map[string]string{
		"article": raw,
	})
	text, err := g.client.ChatJSON(ctx, g.cfg.JSONModel, 0,
		llm.System(g.prompts.System["to_json"]),
		llm.User(prompt),
	)
	if err != nil {
		return draft{}, err
	}

	var d draft
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &d); err != nil {
		log.Printf("gen: draft extraction produced unparseable JSON: %v", err)
		return draft{}, fmt.Errorf("parse: %w", err)
	}
	if d.Title == "" || d.Overview == "" || d.Body == "" {
		return draft{}, fmt.Errorf("draft missing required field")
	}
	return d, nil
}

// Comments requests n synthetic comments as a structured list. The first
// list-of-objects value in the response is accepted regardless of its key;
// parse failures yield an empty list rather than an error.
func (g *Generator) Comments(ctx context.Context, article *types.Article, n int) []types.Comment {
	prompt := config.Render(g.prompts.Article["comments"], map[string]string{
		"title":        article.Title,
		"body":         article.Body,
		"num_comments": strconv.Itoa(n),
	})
	text, err := g.client.ChatJSON(ctx, g.cfg.LightModel, 1, llm.System(prompt))
	if err != nil {
		log.Printf("gen: comment synthesis failed: %v", err)
		return []types.Comment{}
	}

	list := llm.FirstObjectList(text)
	comments := make([]types.Comment, 0, len(list))
	for _, obj := range list {
		comments = append(comments, types.Comment(obj))
	}
	return comments
}

// UltraShortSummary asks for a witty three-word summary of the article, the
// seed for its identifier slug.
func (g *Generator) UltraShortSummary(ctx context.Context, title, body string) (string, error) {
	prompt := config.Render(g.prompts.Article["witty_id"], map[string]string{
		"num_words": "3",
	})
	return g.client.Chat(ctx, g.cfg.LightModel, 1,
		llm.System(prompt),
		llm.User(fmt.Sprintf("# %s\n\n%s", title, body)),
	)
}

// MakeArticleID derives the record identifier: the slugified witty summary
// plus a short random suffix so repeated runs on similar titles stay unique.
func (g *Generator) MakeArticleID(ctx context.Context, title, overview string) (string, error) {
	summary, err := g.UltraShortSummary(ctx, title, overview)
	if err != nil {
		return "", err
	}
	return Slugify(summary) + "-" + uuid.NewString()[:2], nil
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Slugify lowercases, strips punctuation, and dash-joins a short phrase.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	return s
}
