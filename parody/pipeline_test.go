package parody

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"parodypress/config"
	"parodypress/llm"
)

func TestExtractStepFive(t *testing.T) {
	doc := `Step 1: Read the article.
Some notes.

Step 2: Find the absurd angle.

## Step 5
The actual outline lives here,
across two lines.

Step 6: Ignore this.`

	got, err := ExtractStepFive(doc)
	if err != nil {
		t.Fatalf("ExtractStepFive: %v", err)
	}
	if !strings.HasPrefix(got, "## Step 5") {
		t.Errorf("section should start at the heading, got %q", got)
	}
	if !strings.Contains(got, "across two lines.") {
		t.Errorf("section should include the body, got %q", got)
	}
	if strings.Contains(got, "Step 6") {
		t.Errorf("section should stop before the next step, got %q", got)
	}
}

func TestExtractStepFiveAtEndOfText(t *testing.T) {
	doc := "Step 4: Setup.\n\n**Step 5** Final outline text."
	got, err := ExtractStepFive(doc)
	if err != nil {
		t.Fatalf("ExtractStepFive: %v", err)
	}
	if !strings.Contains(got, "Final outline text.") {
		t.Errorf("got %q", got)
	}
}

func TestExtractStepFiveMissing(t *testing.T) {
	if _, err := ExtractStepFive("Step 1: a\nStep 2: b"); err == nil {
		t.Fatal("expected error for missing step 5")
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	html := `<html><body><h1>Big News</h1><p>First paragraph.</p><ul><li>one</li><li>two</li></ul><h2>Sub</h2><p>Second.</p></body></html>`
	got, err := HTMLToMarkdown(html)
	if err != nil {
		t.Fatalf("HTMLToMarkdown: %v", err)
	}
	for _, want := range []string{"# Big News", "First paragraph.", "- one", "- two", "## Sub"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}
}

func TestHTMLToMarkdownEmpty(t *testing.T) {
	if _, err := HTMLToMarkdown("<html><body></body></html>"); err == nil {
		t.Fatal("expected error for contentless page")
	}
}

func TestResolveFeedURL(t *testing.T) {
	if got := ResolveFeedURL("bbc"); got != FeedPresets["bbc"] {
		t.Errorf("preset lookup = %q", got)
	}
	direct := "https://example.com/feed.xml"
	if got := ResolveFeedURL(direct); got != direct {
		t.Errorf("direct URL = %q", got)
	}
}

// storyPage is long enough for readability to treat it as real content.
func storyPage(n int) string {
	para := "The committee met again on Tuesday to discuss the matter at considerable length, " +
		"with several members expressing strong opinions about the budget, the schedule, and " +
		"the long-term implications for everyone involved in the project going forward."
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>Story %d</title></head><body><article><h1>Story %d</h1>", n, n)
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&b, "<p>%s Paragraph %d of story %d.</p>", para, i, n)
	}
	b.WriteString("</article></body></html>")
	return b.String()
}

func TestTopStoryOutlinesIsolatesFailures(t *testing.T) {
	// News site: five stories, story 3 always fails to fetch.
	news := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/3") {
			http.Error(w, "server on fire", http.StatusInternalServerError)
			return
		}
		var n int
		fmt.Sscanf(r.URL.Path, "/story/%d", &n)
		io.WriteString(w, storyPage(n))
	}))
	defer news.Close()

	// Headlines endpoint returning the five candidates.
	headlines := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var items []Headline
		for i := 1; i <= 5; i++ {
			items = append(items, Headline{
				Title:       fmt.Sprintf("Story %d", i),
				Description: fmt.Sprintf("Description %d", i),
				URL:         fmt.Sprintf("%s/story/%d", news.URL, i),
			})
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "ok", "articles": items})
	}))
	defer headlines.Close()

	// Generation endpoint: cleaning calls get a structured article, convert
	// calls (their prompt names Step 5) get a brainstorm document.
	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var reply string
		if strings.Contains(string(body), "Step 5") {
			reply = "Step 1: Notes.\\n\\nStep 5: A committee declares war on Tuesdays.\\n\\nStep 6: n/a"
		} else {
			reply = `{\"title\": \"Cleaned Story\", \"body\": \"The committee met. It was long.\", \"author\": \"Staff\"}`
		}
		fmt.Fprintf(w, `{"choices": [{"message": {"role": "assistant", "content": "%s"}}]}`, reply)
	}))
	defer openaiSrv.Close()

	prompts, err := config.LoadPrompts("../prompts")
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}
	cfg := config.Config{
		OpenAIKey:     "test-key",
		OpenAIBaseURL: openaiSrv.URL + "/v1",
		JSONModel:     "gpt-4o-mini",
		HeavyModel:    "gpt-4o",
	}
	source := &NewsAPISource{Endpoint: headlines.URL, APIKey: "k", Country: "us"}
	p := NewPipeline(cfg, prompts, llm.New(cfg), source, nil)

	ideas, err := p.TopStoryOutlines(context.Background(), 5, 0)
	if err != nil {
		t.Fatalf("TopStoryOutlines: %v", err)
	}
	if len(ideas) != 4 {
		t.Fatalf("got %d ideas; want 4 (story 3 dropped)", len(ideas))
	}
	for _, idea := range ideas {
		if strings.HasSuffix(idea.SourceURL, "/3") {
			t.Errorf("failed candidate leaked into results: %s", idea.SourceURL)
		}
		if !strings.Contains(idea.Description, "Step 5") {
			t.Errorf("outline should be the step 5 section, got %q", idea.Description)
		}
		if idea.Category != "Featured" {
			t.Errorf("category = %q", idea.Category)
		}
	}
}
