package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"parodypress/config"
	"parodypress/deploy"
	"parodypress/feed"
	"parodypress/gen"
	"parodypress/llm"
	"parodypress/parody"
	"parodypress/site"
	"parodypress/sitemap"
	"parodypress/types"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parodypress",
		Short:         "Generate satirical news articles and assemble the static site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIdeaCmd(), newGenerateCmd(), newParodyCmd(), newBuildCmd(), newDeployCmd())
	return root
}

func setup() (config.Config, *config.PromptSet, *llm.Client, error) {
	cfg := config.Load()
	prompts, err := config.LoadPrompts(cfg.PromptDir)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, prompts, llm.New(cfg), nil
}

func countArg(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("count must be a positive integer, got %q", arg)
	}
	return n, nil
}

func newIdeaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "idea <n>",
		Short: "Print n freshly generated article ideas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := countArg(args[0])
			if err != nil {
				return err
			}
			cfg, prompts, client, err := setup()
			if err != nil {
				return err
			}
			g := gen.New(cfg, prompts, client)
			ideas, err := g.Ideas(cmd.Context(), n)
			if err != nil {
				return err
			}
			for i, idea := range ideas {
				fmt.Printf("%d. %s [%s]\n   %s\n", i+1, idea.Title, idea.Category, idea.Description)
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <n>",
		Short: "Synthesize n articles into the article store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := countArg(args[0])
			if err != nil {
				return err
			}
			cfg, prompts, client, err := setup()
			if err != nil {
				return err
			}
			g := gen.New(cfg, prompts, client)
			ideas, err := g.Ideas(cmd.Context(), n)
			if err != nil {
				return err
			}
			return generateArticles(cmd.Context(), cfg, g, ideas)
		},
	}
}

func newParodyCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "parody <n>",
		Short: "Derive n articles from real news headlines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := countArg(args[0])
			if err != nil {
				return err
			}
			cfg, prompts, client, err := setup()
			if err != nil {
				return err
			}

			seen, err := parody.NewSeenFilter(cfg.RedisAddr)
			if err != nil {
				log.Printf("parody: seen-URL filter disabled: %v", err)
			}
			if seen != nil {
				defer seen.Close()
			}

			p := parody.NewPipeline(cfg, prompts, client, parody.NewHeadlineSource(cfg), seen)
			ideas, err := p.TopStoryOutlines(cmd.Context(), n, workers)
			if err != nil {
				return err
			}
			if len(ideas) == 0 {
				return fmt.Errorf("no parody outlines produced")
			}
			return generateArticles(cmd.Context(), cfg, gen.New(cfg, prompts, client), ideas)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "parody worker pool size (0 sizes to the candidate count)")
	return cmd
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Render the site, feed and sitemap from the article store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return buildSite(cfg)
		},
	}
}

func newDeployCmd() *cobra.Command {
	var (
		count     int
		auto      bool
		keepLocal bool
		repo      string
		branch    string
	)
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Generate, build and push the site to the pages repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, prompts, client, err := setup()
			if err != nil {
				return err
			}

			if count > 0 {
				g := gen.New(cfg, prompts, client)
				ideas, err := g.Ideas(cmd.Context(), count)
				if err != nil {
					return err
				}
				if err := generateArticles(cmd.Context(), cfg, g, ideas); err != nil {
					return err
				}
			}
			if err := buildSite(cfg); err != nil {
				return err
			}

			pub := deploy.Publisher{
				RepoURL:   deploy.AuthRepoURL(repo, os.Getenv("GITHUB_PAT")),
				Branch:    branch,
				SiteDir:   cfg.SiteDir,
				KeepLocal: keepLocal,
			}
			if !auto {
				pub.Confirm = confirmPush
			}
			return pub.Publish(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "articles to generate before building (0 skips generation)")
	cmd.Flags().BoolVar(&auto, "auto", false, "push without asking for confirmation")
	cmd.Flags().BoolVar(&keepLocal, "keep-local", false, "keep the local pages clone after publishing")
	cmd.Flags().StringVar(&repo, "repo", os.Getenv("PAGES_REPO"), "pages repository clone URL")
	cmd.Flags().StringVar(&branch, "branch", "", "pages repository branch (default branch if empty)")
	return cmd
}

// generateArticles runs the synthesis batch and persists the survivors into
// a dated subdirectory of the article store.
func generateArticles(ctx context.Context, cfg config.Config, g *gen.Generator, ideas []types.Idea) error {
	storeDir := filepath.Join(cfg.ArticleDir, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return err
	}

	articles := gen.Compact(g.NewArticles(ctx, ideas))
	if len(articles) == 0 {
		return fmt.Errorf("no articles generated")
	}
	for _, a := range articles {
		gen.ProcessArticle(a, storeDir)
		if err := gen.SaveArticle(a, storeDir); err != nil {
			return err
		}
	}
	log.Printf("generated %d of %d articles into %s", len(articles), len(ideas), storeDir)
	return nil
}

func buildSite(cfg config.Config) error {
	b, err := site.NewBuilder(cfg)
	if err != nil {
		return err
	}
	if err := b.Build(); err != nil {
		return err
	}

	articles, err := b.LoadArticles()
	if err != nil {
		return err
	}
	fb, err := feed.NewBuilder(cfg)
	if err != nil {
		return err
	}
	if err := fb.Write(articles); err != nil {
		return err
	}
	return sitemap.Generate(cfg.SiteDir, cfg.BaseURL, nil)
}

func confirmPush(summary string) bool {
	fmt.Printf("about to push %q, continue? [y/N] ", summary)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return false
	}
	ans := strings.ToLower(strings.TrimSpace(sc.Text()))
	return ans == "y" || ans == "yes"
}
