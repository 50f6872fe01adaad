package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"parodypress/config"
	"parodypress/llm"
	"parodypress/types"
)

// fakeOpenAI serves scripted chat completions in call order plus a fixed
// image response, standing in for the real endpoint.
type fakeOpenAI struct {
	chatReplies []string
	chatCalls   int
	imageURL    string
	failAll     bool
}

func (f *fakeOpenAI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.failAll {
			http.Error(w, `{"error": {"message": "boom"}}`, http.StatusInternalServerError)
			return
		}
		switch {
		case strings.Contains(r.URL.Path, "chat/completions"):
			if f.chatCalls >= len(f.chatReplies) {
				http.Error(w, `{"error": {"message": "script exhausted"}}`, http.StatusInternalServerError)
				return
			}
			reply := f.chatReplies[f.chatCalls]
			f.chatCalls++
			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": reply}},
				},
			}
			json.NewEncoder(w).Encode(resp)
		case strings.Contains(r.URL.Path, "images/generations"):
			fmt.Fprintf(w, `{"data": [{"url": %q}]}`, f.imageURL)
		default:
			http.NotFound(w, r)
		}
	})
}

func testGenerator(t *testing.T, fake *fakeOpenAI) *Generator {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	prompts, err := config.LoadPrompts("../prompts")
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}
	cfg := config.Config{
		OpenAIKey:     "test-key",
		OpenAIBaseURL: srv.URL + "/v1",
		JSONModel:     "gpt-4o-mini",
		LightModel:    "gpt-4o-mini",
		HeavyModel:    "gpt-4o",
	}
	return New(cfg, prompts, llm.New(cfg))
}

func TestArticleFromIdea(t *testing.T) {
	fake := &fakeOpenAI{
		chatReplies: []string{
			"1. Setup\n2. Escalation\n3. Punchline",
			"RAW ARTICLE TEXT",
			`{"title": "Area Man Declares Victory", "overview": "A premature celebration.", "body": "# Victory\n\nHe won nothing. Everyone clapped."}`,
			`{"comments": [{"user": "early_bird", "text": "called it"}, {"user": "skeptic", "text": "sure you did"}]}`,
			"concept a\nconcept b",
			`{"subject": "a man atop a tiny podium"}`,
			"Premature Victory Lap",
		},
		imageURL: "https://images.example.com/generated.png",
	}
	g := testGenerator(t, fake)

	idea := types.Idea{Title: "Victory", Description: "A man declares victory over nothing", Category: "Local"}
	article, err := g.ArticleFromIdea(context.Background(), idea)
	if err != nil {
		t.Fatalf("ArticleFromIdea: %v", err)
	}

	if article.Title != "Area Man Declares Victory" {
		t.Errorf("title = %q", article.Title)
	}
	if article.Category != "Local" {
		t.Errorf("category = %q", article.Category)
	}
	if !strings.HasPrefix(article.Generator, "body_") {
		t.Errorf("generator variant = %q", article.Generator)
	}
	if article.ReadingTime <= 0 {
		t.Errorf("reading time = %v", article.ReadingTime)
	}
	if len(article.Comments) != 2 {
		t.Errorf("comments = %v", article.Comments)
	}
	if article.ImagePath != "https://images.example.com/generated.png" {
		t.Errorf("image path = %q", article.ImagePath)
	}
	if _, err := article.Time(); err != nil {
		t.Errorf("timestamp %q does not parse: %v", article.Timestamp, err)
	}
	wantID := regexp.MustCompile(`^premature-victory-lap-[0-9a-f]{2}$`)
	if !wantID.MatchString(article.ID) {
		t.Errorf("id = %q; want slug plus two-char suffix", article.ID)
	}
	if fake.chatCalls != 7 {
		t.Errorf("chat calls = %d; want 7", fake.chatCalls)
	}
}

func TestArticleFromIdeaParodyPropagation(t *testing.T) {
	fake := &fakeOpenAI{
		chatReplies: []string{
			"outline",
			"raw",
			`{"title": "T", "overview": "O", "body": "Short body. Done."}`,
			`{"comments": [{"user": "a", "text": "b"}]}`,
			"ideas",
			`{"subject": "x"}`,
			"Tiny Witty Summary",
		},
		imageURL: "https://images.example.com/p.png",
	}
	g := testGenerator(t, fake)

	idea := types.NewParodyIdea("an outline", "https://news.example.com/story")
	article, err := g.ArticleFromIdea(context.Background(), idea)
	if err != nil {
		t.Fatalf("ArticleFromIdea: %v", err)
	}
	if article.Category != types.ParodyCategory {
		t.Errorf("category = %q; want %q", article.Category, types.ParodyCategory)
	}
	if article.ParodySource != "https://news.example.com/story" {
		t.Errorf("parody source = %q", article.ParodySource)
	}
}

func TestArticleFromIdeaOutlineFailure(t *testing.T) {
	g := testGenerator(t, &fakeOpenAI{failAll: true})

	_, err := g.ArticleFromIdea(context.Background(), types.Idea{Description: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "outline:") {
		t.Errorf("error should identify the failed stage, got %v", err)
	}
}

func TestNewArticlesFiltersFailures(t *testing.T) {
	g := testGenerator(t, &fakeOpenAI{failAll: true})

	ideas := []types.Idea{{Description: "a"}, {Description: "b"}, {Description: "c"}}
	results := g.NewArticles(context.Background(), ideas)
	if len(results) != 3 {
		t.Fatalf("results length = %d; want one slot per idea", len(results))
	}
	if got := Compact(results); len(got) != 0 {
		t.Fatalf("expected all slots nil, got %d articles", len(got))
	}
}

func TestIdeas(t *testing.T) {
	fake := &fakeOpenAI{
		chatReplies: []string{
			`{"ideas": [{"title": "A", "description": "a story", "category": "Tech"}, {"title": "B", "description": "b story", "category": "World"}]}`,
		},
	}
	g := testGenerator(t, fake)

	ideas, err := g.Ideas(context.Background(), 2)
	if err != nil {
		t.Fatalf("Ideas: %v", err)
	}
	if len(ideas) != 2 || ideas[0].Title != "A" || ideas[1].Category != "World" {
		t.Fatalf("ideas = %+v", ideas)
	}
}

func TestIdeasParseAnomaly(t *testing.T) {
	g := testGenerator(t, &fakeOpenAI{chatReplies: []string{"not json"}})
	ideas, err := g.Ideas(context.Background(), 3)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if len(ideas) != 0 {
		t.Fatalf("expected no ideas, got %v", ideas)
	}
}

func TestCommentTargetFloors(t *testing.T) {
	for i := 0; i < 500; i++ {
		if n := CommentTarget(types.ParodyCategory); n < 2 {
			t.Fatalf("featured comment target = %d; want >= 2", n)
		}
		if n := CommentTarget("Local"); n < 0 {
			t.Fatalf("comment target = %d; want >= 0", n)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Rodent Seizes Power", "rodent-seizes-power"},
		{"  Hello,   World!  ", "hello-world"},
		{"Already-Dashed Phrase", "alreadydashed-phrase"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
