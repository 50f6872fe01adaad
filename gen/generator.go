// Package gen implements the article synthesis pipeline: idea to outline to
// body to structured draft, enriched with comments, an image, reading time
// and a derived identifier.
package gen

import (
	"context"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"parodypress/config"
	"parodypress/llm"
	"parodypress/textproc"
	"parodypress/types"
)

// MaxWorkers caps the synthesis worker pool regardless of batch size.
const MaxWorkers = 8

const (
	meanWords  = 450
	stdevWords = 150
	minWords   = 100
	maxWords   = 10000

	meanComments  = 4.0
	stdevComments = 2.7
)

// Generator runs the synthesis pipeline against a generation client.
type Generator struct {
	cfg     config.Config
	prompts *config.PromptSet
	client  *llm.Client
}

// New builds a Generator.
func New(cfg config.Config, prompts *config.PromptSet, client *llm.Client) *Generator {
	return &Generator{cfg: cfg, prompts: prompts, client: client}
}

// NewArticles synthesizes one article per idea on a bounded worker pool.
// Failed ideas leave a nil slot; use Compact to filter them.
func (g *Generator) NewArticles(ctx context.Context, ideas []types.Idea) []*types.Article {
	if len(ideas) == 0 {
		return nil
	}

	workers := len(ideas)
	if n := runtime.NumCPU(); n < workers {
		workers = n
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	results := make([]*types.Article, len(ideas))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, idea := range ideas {
		wg.Add(1)
		go func(i int, idea types.Idea) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			article, err := g.ArticleFromIdea(ctx, idea)
			if err != nil {
				log.Printf("gen: article %d failed: %v", i, err)
				return
			}
			results[i] = article
		}(i, idea)
	}
	wg.Wait()

	return results
}

// Compact drops the nil slots a failed batch leaves behind.
func Compact(articles []*types.Article) []*types.Article {
	out := make([]*types.Article, 0, len(articles))
	for _, a := range articles {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// ArticleFromIdea runs the full pipeline for one idea. Stages run in strict
// order; a failed required stage aborts the record, while comment and image
// synthesis degrade to an empty field.
func (g *Generator) ArticleFromIdea(ctx context.Context, idea types.Idea) (*types.Article, error) {
	outline, err := g.Outline(ctx, idea)
	if err != nil {
		return nil, stageError("outline", err)
	}

	raw, variant, err := g.Body(ctx, idea, outline, targetWordCount())
	if err != nil {
		return nil, stageError("body", err)
	}

	d, err := g.extractDraft(ctx, raw)
	if err != nil {
		return nil, stageError("extract", err)
	}

	readingTime, err := textproc.EstimateReadingTime(d.Body, textproc.WordsPerMinute)
	if err != nil {
		return nil, stageError("reading time", err)
	}

	article := &types.Article{
		Title:       d.Title,
		Overview:    d.Overview,
		Body:        d.Body,
		Outline:     outline,
		Category:    idea.Category,
		Generator:   variant,
		ReadingTime: readingTime,
	}
	if idea.Kind == types.Parody {
		article.ParodySource = idea.SourceURL
	}

	// Comment parse failures degrade to an empty list.
	article.Comments = g.Comments(ctx, article, CommentTarget(article.Category))

	// Image failures leave the field empty; the site builder warns later.
	imageURL, err := g.ArticleImage(ctx, article.Title, outline)
	if err != nil {
		log.Printf("gen: image synthesis failed for %q: %v", article.Title, err)
		imageURL = ""
	}
	article.ImagePath = imageURL

	article.Timestamp = time.Now().Format(types.TimestampFormat)

	id, err := g.MakeArticleID(ctx, article.Title, article.Overview)
	if err != nil {
		return nil, stageError("identifier", err)
	}
	article.ID = id

	log.Printf("gen: article created: %q (%s)", article.Title, article.ID)
	return article, nil
}

// targetWordCount samples the body length goal from a normal distribution,
// clamped to sane bounds. The body generator treats it as guidance only.
func targetWordCount() int {
	n := int(rand.NormFloat64()*stdevWords + meanWords)
	if n < minWords {
		n = minWords
	}
	if n > maxWords {
		n = maxWords
	}
	return n
}

// CommentTarget samples how many comments to request. Featured articles get
// at least two; everything else can end up with none.
func CommentTarget(category string) int {
	n := rand.NormFloat64()*stdevComments + meanComments
	floor := 0.0
	if category == types.ParodyCategory {
		floor = 2
	}
	if n < floor {
		n = floor
	}
	return int(n + 0.5)
}
