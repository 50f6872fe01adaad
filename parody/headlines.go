// Package parody turns real news stories into parody article outlines.
package parody

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"parodypress/config"
)

// Headline is one candidate news item from the external feed.
type Headline struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// HeadlineSource fetches a pool of candidate headlines.
type HeadlineSource interface {
	TopHeadlines(ctx context.Context, limit int) ([]Headline, error)
}

// FeedPresets maps friendly names to RSS headline feeds, used when no
// headlines API key is configured.
var FeedPresets = map[string]string{
	"ap":  "https://rsshub.app/apnews/topics/apf-topnews",
	"bbc": "https://feeds.bbci.co.uk/news/rss.xml",
	"hn":  "https://hnrss.org/newest",
	"npr": "https://feeds.npr.org/1001/rss.xml",
}

// ResolveFeedURL resolves a preset name to its feed URL, passing direct URLs
// through unchanged.
func ResolveFeedURL(feedInput string) string {
	if u, ok := FeedPresets[feedInput]; ok {
		return u
	}
	return feedInput
}

// NewHeadlineSource picks the JSON headlines API when a key is configured,
// falling back to the RSS preset otherwise.
func NewHeadlineSource(cfg config.Config) HeadlineSource {
	if cfg.NewsAPIKey != "" {
		return &NewsAPISource{
			Endpoint: cfg.NewsAPIEndpoint,
			APIKey:   cfg.NewsAPIKey,
			Country:  cfg.NewsCountry,
		}
	}
	return &RSSSource{FeedURL: ResolveFeedURL(cfg.HeadlineFeed)}
}

// NewsAPISource fetches headlines from a NewsAPI-shaped JSON endpoint.
type NewsAPISource struct {
	Endpoint string
	APIKey   string
	Country  string
	Client   *http.Client
}

func (s *NewsAPISource) httpClient() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// TopHeadlines requests up to limit headline objects.
func (s *NewsAPISource) TopHeadlines(ctx context.Context, limit int) ([]Headline, error) {
	q := url.Values{}
	q.Set("country", s.Country)
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("apiKey", s.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("headlines request: %w", err)
	}
	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headlines endpoint: status %d", resp.StatusCode)
	}

	var parsed struct {
		Status   string     `json:"status"`
		Articles []Headline `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parse headlines: %w", err)
	}
	if parsed.Status != "" && parsed.Status != "ok" {
		return nil, fmt.Errorf("headlines endpoint: status %q", parsed.Status)
	}
	return parsed.Articles, nil
}

// RSSSource fetches headlines from an RSS/Atom feed.
type RSSSource struct {
	FeedURL string
}

// TopHeadlines parses the feed and returns up to limit items.
func (s *RSSSource) TopHeadlines(ctx context.Context, limit int) ([]Headline, error) {
	feed, err := gofeed.NewParser().ParseURLWithContext(s.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	count := len(feed.Items)
	if limit < count {
		count = limit
	}
	headlines := make([]Headline, 0, count)
	for _, item := range feed.Items[:count] {
		headlines = append(headlines, Headline{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
		})
	}
	return headlines, nil
}
