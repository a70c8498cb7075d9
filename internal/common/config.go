// Package common provides shared utilities for newsdesk
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for newsdesk
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	News        NewsConfig      `toml:"news"`
	Cache       CacheConfig     `toml:"cache"`
	Clients     ClientsConfig   `toml:"clients"`
	Summary     SummaryConfig   `toml:"summary"`
	Watchlist   WatchlistConfig `toml:"watchlist"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// NewsConfig holds the aggregation pipeline settings
type NewsConfig struct {
	Deadline             string `toml:"deadline"` // overall budget per entry point call
	Timeout              string `toml:"timeout"`  // per source call
	GeneralQuery         string `toml:"general_query"`
	GeneralFetchLimit    int    `toml:"general_fetch_limit"`
	DefaultLimit         int    `toml:"default_limit"`
	PerCompanyLimit      int    `toml:"per_company_limit"`
	CompanyLimit         int    `toml:"company_limit"`
	PortfolioSpacing     string `toml:"portfolio_spacing"` // minimum spacing between per-company calls
	PortfolioConcurrency int    `toml:"portfolio_concurrency"`
	SummaryConcurrency   int    `toml:"summary_concurrency"`
	WarmSchedule         string `toml:"warm_schedule"` // cron spec, empty disables
}

// GetDeadline parses and returns the overall deadline
func (c *NewsConfig) GetDeadline() time.Duration {
	return parseDuration(c.Deadline, 20*time.Second)
}

// GetTimeout parses and returns the per-call timeout
func (c *NewsConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 8*time.Second)
}

// GetPortfolioSpacing parses and returns the per-company call spacing
func (c *NewsConfig) GetPortfolioSpacing() time.Duration {
	return parseDuration(c.PortfolioSpacing, 300*time.Millisecond)
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	RedisURL string         `toml:"redis_url"` // optional second-level backend
	Prefix   string         `toml:"prefix"`
	TTL      CacheTTLConfig `toml:"ttl"`
}

// CacheTTLConfig holds per-source TTL overrides as duration strings
type CacheTTLConfig struct {
	Feed       string `toml:"feed"`
	Aggregator string `toml:"aggregator"`
	Portfolio  string `toml:"portfolio"`
	TickerNews string `toml:"ticker_news"`
	Summary    string `toml:"summary"`
	Metadata   string `toml:"metadata"`
}

// TTLs resolves the configured TTLs, falling back to the freshness defaults.
func (c *CacheTTLConfig) TTLs() TTLs {
	return TTLs{
		Feed:       parseDuration(c.Feed, FreshnessFeed),
		Aggregator: parseDuration(c.Aggregator, FreshnessAggregator),
		Portfolio:  parseDuration(c.Portfolio, FreshnessPortfolio),
		TickerNews: parseDuration(c.TickerNews, FreshnessTickerNews),
		Summary:    parseDuration(c.Summary, FreshnessSummary),
		Metadata:   parseDuration(c.Metadata, FreshnessMetadata),
	}
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	GNews     HTTPClientConfig `toml:"gnews"`
	NewsData  HTTPClientConfig `toml:"newsdata"`
	RSS       RSSConfig        `toml:"rss"`
	EODHD     HTTPClientConfig `toml:"eodhd"`
	Finnhub   FinnhubConfig    `toml:"finnhub"`
	Gemini    ModelConfig      `toml:"gemini"`
	OpenAI    ModelConfig      `toml:"openai"`
	Anthropic ModelConfig      `toml:"anthropic"`
}

// HTTPClientConfig holds configuration shared by the JSON news APIs
type HTTPClientConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *HTTPClientConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// RSSConfig holds the syndication feed configuration
type RSSConfig struct {
	URL  string `toml:"url"`
	Name string `toml:"name"`
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
}

// ModelConfig holds a generative model provider configuration
type ModelConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// SummaryConfig selects the text generation provider
type SummaryConfig struct {
	Provider string `toml:"provider"` // gemini, openai, anthropic
}

// WatchlistConfig points at the read-only watch-list store
type WatchlistConfig struct {
	Path  string          `toml:"path"`
	Items []WatchlistItem `toml:"items"`
}

// WatchlistItem is an inline watch-list entry
type WatchlistItem struct {
	Ticker string `toml:"ticker"`
	Name   string `toml:"name"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console or json
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		News: NewsConfig{
			Deadline:             "20s",
			Timeout:              "8s",
			GeneralQuery:         "stock market OR economy OR investing",
			GeneralFetchLimit:    7,
			DefaultLimit:         5,
			PerCompanyLimit:      1,
			CompanyLimit:         3,
			PortfolioSpacing:     "300ms",
			PortfolioConcurrency: 4,
			SummaryConcurrency:   4,
			WarmSchedule:         "*/30 * * * *",
		},
		Cache: CacheConfig{
			Prefix: "newsdesk:",
		},
		Clients: ClientsConfig{
			GNews: HTTPClientConfig{
				BaseURL:   "https://gnews.io/api/v4",
				RateLimit: 2,
				Timeout:   "10s",
			},
			NewsData: HTTPClientConfig{
				BaseURL:   "https://newsdata.io/api/1",
				RateLimit: 2,
				Timeout:   "10s",
			},
			RSS: RSSConfig{
				URL:  "https://finance.yahoo.com/news/rssindex",
				Name: "Yahoo Finance",
			},
			EODHD: HTTPClientConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "10s",
			},
			Finnhub: FinnhubConfig{
				RateLimit: 1,
			},
			Gemini: ModelConfig{
				Model: "gemini-2.5-flash",
			},
			OpenAI: ModelConfig{
				Model: "gpt-4o-mini",
			},
			Anthropic: ModelConfig{
				Model: "claude-haiku-4-5",
			},
		},
		Summary: SummaryConfig{
			Provider: "gemini",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NEWSDESK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("NEWSDESK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("NEWSDESK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("NEWSDESK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("NEWSDESK_WATCHLIST"); v != "" {
		config.Watchlist.Path = v
	}

	if v := os.Getenv("NEWSDESK_SUMMARY_PROVIDER"); v != "" {
		config.Summary.Provider = strings.ToLower(v)
	}

	if v := firstEnv("REDIS_URL", "NEWSDESK_REDIS_URL"); v != "" {
		config.Cache.RedisURL = v
	}

	// API keys
	config.Clients.GNews.APIKey = ResolveAPIKey("gnews_api_key", config.Clients.GNews.APIKey)
	config.Clients.NewsData.APIKey = ResolveAPIKey("newsdata_api_key", config.Clients.NewsData.APIKey)
	config.Clients.EODHD.APIKey = ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	config.Clients.Finnhub.APIKey = ResolveAPIKey("finnhub_api_key", config.Clients.Finnhub.APIKey)
	config.Clients.Gemini.APIKey = ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	config.Clients.OpenAI.APIKey = ResolveAPIKey("openai_api_key", config.Clients.OpenAI.APIKey)
	config.Clients.Anthropic.APIKey = ResolveAPIKey("anthropic_api_key", config.Clients.Anthropic.APIKey)
}

// keyToEnvMapping lists the environment variables checked for each API key, highest priority first.
var keyToEnvMapping = map[string][]string{
	"gnews_api_key":     {"GNEWS_API_KEY", "NEWSDESK_GNEWS_API_KEY"},
	"newsdata_api_key":  {"NEWSDATA_API_KEY", "NEWSDESK_NEWSDATA_API_KEY"},
	"eodhd_api_key":     {"EODHD_API_KEY", "NEWSDESK_EODHD_API_KEY"},
	"finnhub_api_key":   {"FINNHUB_API_KEY", "NEWSDESK_FINNHUB_API_KEY"},
	"gemini_api_key":    {"GEMINI_API_KEY", "NEWSDESK_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"openai_api_key":    {"OPENAI_API_KEY", "NEWSDESK_OPENAI_API_KEY"},
	"anthropic_api_key": {"ANTHROPIC_API_KEY", "NEWSDESK_ANTHROPIC_API_KEY"},
}

// ResolveAPIKey resolves an API key from the environment, or returns the fallback
func ResolveAPIKey(name string, fallback string) string {
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		if v := firstEnv(envVarNames...); v != "" {
			return v
		}
	}
	return fallback
}

// ValidateRequired returns the names of settings that must be present for the service to be useful.
// Missing keys degrade the pipelines, they never stop the process.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.GNews.APIKey == "" && c.Clients.NewsData.APIKey == "" {
		missing = append(missing, "clients.gnews.api_key or clients.newsdata.api_key")
	}
	switch c.Summary.Provider {
	case "openai":
		if c.Clients.OpenAI.APIKey == "" {
			missing = append(missing, "clients.openai.api_key")
		}
	case "anthropic":
		if c.Clients.Anthropic.APIKey == "" {
			missing = append(missing, "clients.anthropic.api_key")
		}
	default:
		if c.Clients.Gemini.APIKey == "" {
			missing = append(missing, "clients.gemini.api_key")
		}
	}
	if c.Watchlist.Path == "" && len(c.Watchlist.Items) == 0 {
		missing = append(missing, "watchlist.path or watchlist.items")
	}
	return missing
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
