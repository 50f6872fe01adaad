package gen

import (
	"context"
	"fmt"

	"parodypress/config"
	"parodypress/llm"
)

// ArticleImage runs the two-turn brainstorm-then-select exchange to pick a
// concrete visual concept, then synthesizes an image from it. Returns the
// remote image URL.
func (g *Generator) ArticleImage(ctx context.Context, title, outline string) (string, error) {
	brainstorm := llm.User(config.Render(g.prompts.Images["brainstorm"], map[string]string{
		"title":   title,
		"outline": outline,
	}))

	ideas, err := g.client.Chat(ctx, g.cfg.HeavyModel, 0.7, brainstorm)
	if err != nil {
		return "", fmt.Errorf("image brainstorm: %w", err)
	}

	selection, err := g.client.ChatJSON(ctx, g.cfg.JSONModel, 0,
		brainstorm,
		llm.Assistant(ideas),
		llm.User(g.prompts.Images["select"]),
	)
	if err != nil {
		return "", fmt.Errorf("image selection: %w", err)
	}
	concept := llm.ExtractJSON(selection)

	prompt := config.Render(g.prompts.Images["create"], map[string]string{
		"image_idea": concept,
		"title":      title,
	})
	url, err := g.client.Image(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("image synthesis: %w", err)
	}
	return url, nil
}
