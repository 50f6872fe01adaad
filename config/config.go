package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Model selectors per call-site class. Structured-output and light calls use
// the cheap model; outline/body generation uses the heavy one.
const (
	DefaultJSONModel  = "gpt-4o-mini"
	DefaultLightModel = "gpt-4o-mini"
	DefaultHeavyModel = "gpt-4o"
)

const (
	DefaultFeedLimit   = 50
	DefaultNewsCountry = "us"
	DefaultBaseURL     = "https://parodypress.example.com"
)

// Config holds everything the pipelines need, constructed once at startup
// and passed explicitly into each stage.
type Config struct {
	OpenAIKey     string
	OpenAIBaseURL string // override for tests / compatible endpoints

	JSONModel  string
	LightModel string
	HeavyModel string

	NewsAPIKey      string
	NewsAPIEndpoint string
	NewsCountry     string
	HeadlineFeed    string // RSS preset or URL, used when no API key is set

	RedisAddr string // optional seen-URL filter; empty disables it

	BaseURL     string
	ArticleDir  string
	SiteDir     string
	TemplateDir string
	PromptDir   string

	FeedLimit int
}

// Load reads .env (non-fatal if missing) and builds a Config from the
// environment with defaults applied.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		JSONModel:       envOrDefault("JSON_MODEL", DefaultJSONModel),
		LightModel:      envOrDefault("LIGHT_MODEL", DefaultLightModel),
		HeavyModel:      envOrDefault("HEAVY_MODEL", DefaultHeavyModel),
		NewsAPIKey:      os.Getenv("NEWSAPI_KEY"),
		NewsAPIEndpoint: envOrDefault("NEWSAPI_ENDPOINT", "https://newsapi.org/v2/top-headlines"),
		NewsCountry:     envOrDefault("NEWS_COUNTRY", DefaultNewsCountry),
		HeadlineFeed:    envOrDefault("HEADLINE_FEED", "ap"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		BaseURL:         envOrDefault("SITE_BASE_URL", DefaultBaseURL),
		ArticleDir:      envOrDefault("ARTICLE_DIR", "out/articles"),
		SiteDir:         envOrDefault("SITE_DIR", "out/site"),
		TemplateDir:     envOrDefault("TEMPLATE_DIR", "templates"),
		PromptDir:       envOrDefault("PROMPT_DIR", "prompts"),
		FeedLimit:       envIntOrDefault("FEED_LIMIT", DefaultFeedLimit),
	}
	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
