package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/newsdesk/internal/cache"
	"github.com/bobmcallan/newsdesk/internal/clients/anthropic"
	"github.com/bobmcallan/newsdesk/internal/clients/eodhd"
	"github.com/bobmcallan/newsdesk/internal/clients/finnhub"
	"github.com/bobmcallan/newsdesk/internal/clients/gemini"
	"github.com/bobmcallan/newsdesk/internal/clients/gnews"
	"github.com/bobmcallan/newsdesk/internal/clients/newsdata"
	"github.com/bobmcallan/newsdesk/internal/clients/openai"
	"github.com/bobmcallan/newsdesk/internal/clients/rssfeed"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/services/news"
	"github.com/bobmcallan/newsdesk/internal/services/resolver"
	"github.com/bobmcallan/newsdesk/internal/services/summary"
	"github.com/bobmcallan/newsdesk/internal/storage"
)

// App holds all initialized services, clients, and the MCP server.
// It is the shared core used by both cmd/newsdesk-server and cmd/newsdesk.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Cache       *cache.Cache
	Watchlist   interfaces.WatchlistStore
	Resolver    *resolver.Service
	Summarizer  interfaces.Summarizer
	NewsService interfaces.NewsService
	MCPServer   *server.MCPServer
	StartupTime time.Time

	redis           *cache.RedisBackend
	scheduler       *cron.Cron
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// NewApp loads configuration and initializes the App.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, NEWSDESK_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("NEWSDESK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "newsdesk.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/newsdesk.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve a relative watch-list path: working directory, then beside the config file, then the binary directory
	if p := config.Watchlist.Path; p != "" && !filepath.IsAbs(p) {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			config.Watchlist.Path = filepath.Join(binDir, p)
			if beside := filepath.Join(filepath.Dir(configPath), p); fileExists(beside) {
				config.Watchlist.Path = beside
			}
		}
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	return New(context.Background(), config, logger)
}

// New initializes the App from an already loaded configuration
func New(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	for _, missing := range config.ValidateRequired() {
		logger.Warn().Str("setting", missing).Msg("Configuration missing - some features will be limited")
	}

	ttls := config.Cache.TTL.TTLs()
	timeout := config.News.GetTimeout()

	// Result cache, with Redis as an optional second level
	cacheOpts := []cache.Option{cache.WithLogger(logger)}
	var redisBackend *cache.RedisBackend
	if config.Cache.RedisURL != "" {
		rb, err := cache.NewRedisBackend(ctx, config.Cache.RedisURL, config.Cache.Prefix)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis cache unavailable - using memory cache only")
		} else {
			redisBackend = rb
			cacheOpts = append(cacheOpts, cache.WithBackend(rb))
		}
	}
	resultCache := cache.New(cacheOpts...)

	sources, metadata := buildSources(config, resultCache, ttls, timeout, logger)

	res := resolver.NewService(resultCache, metadata, logger,
		resolver.WithMetadataTTL(ttls.Metadata),
		resolver.WithTimeout(timeout),
	)

	summarizer := summary.NewService(newTextGenerator(ctx, config, logger), resultCache, logger,
		summary.WithTTL(ttls.Summary),
		summary.WithTimeout(timeout),
	)

	watchlist := storage.NewWatchlistStore(logger, config.Watchlist)

	newsService := news.NewService(sources, res, summarizer, watchlist, resultCache, news.SettingsFromConfig(config), logger)

	mcpServer := server.NewMCPServer(
		"newsdesk",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:      config,
		Logger:      logger,
		Cache:       resultCache,
		Watchlist:   watchlist,
		Resolver:    res,
		Summarizer:  summarizer,
		NewsService: newsService,
		MCPServer:   mcpServer,
		StartupTime: startupStart,
		redis:       redisBackend,
	}

	a.registerTools()

	logger.Info().
		Int("general_sources", len(sources.General)).
		Int("company_sources", len(sources.Company)).
		Int("ticker_sources", len(sources.TickerNews)).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// buildSources creates the news clients with keys present and wraps them in adapters.
// Priority: GNews, NewsData.io, then the feed for general news; EODHD then Finnhub by ticker.
func buildSources(config *common.Config, c *cache.Cache, ttls common.TTLs, timeout time.Duration, logger *common.Logger) (news.Sources, []interfaces.MetadataProvider) {
	var sources news.Sources
	var metadata []interfaces.MetadataProvider

	adapter := func(p interfaces.NewsProvider, ttl time.Duration) *news.Adapter {
		return news.NewAdapter(p, c, ttl, timeout, logger)
	}

	if cfg := config.Clients.GNews; cfg.APIKey != "" {
		client := gnews.NewClient(cfg.APIKey,
			gnews.WithBaseURL(cfg.BaseURL),
			gnews.WithLogger(logger),
			gnews.WithRateLimit(cfg.RateLimit),
			gnews.WithTimeout(cfg.GetTimeout()),
		)
		a := adapter(client, ttls.Aggregator)
		sources.General = append(sources.General, a)
		sources.Company = append(sources.Company, a)
	} else {
		logger.Warn().Msg("GNews API key not configured - primary aggregator disabled")
	}

	if cfg := config.Clients.NewsData; cfg.APIKey != "" {
		client := newsdata.NewClient(cfg.APIKey,
			newsdata.WithBaseURL(cfg.BaseURL),
			newsdata.WithLogger(logger),
			newsdata.WithRateLimit(cfg.RateLimit),
			newsdata.WithTimeout(cfg.GetTimeout()),
		)
		a := adapter(client, ttls.Aggregator)
		sources.General = append(sources.General, a)
		sources.Company = append(sources.Company, a)
	} else {
		logger.Warn().Msg("NewsData.io API key not configured - secondary aggregator disabled")
	}

	if cfg := config.Clients.RSS; cfg.URL != "" {
		feed := rssfeed.NewClient(
			rssfeed.WithFeedURL(cfg.URL),
			rssfeed.WithSourceName(cfg.Name),
			rssfeed.WithLogger(logger),
			rssfeed.WithTimeout(timeout),
		)
		sources.General = append(sources.General, adapter(feed, ttls.Feed))
	}

	if cfg := config.Clients.EODHD; cfg.APIKey != "" {
		client := eodhd.NewClient(cfg.APIKey,
			eodhd.WithBaseURL(cfg.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(cfg.RateLimit),
			eodhd.WithTimeout(cfg.GetTimeout()),
		)
		sources.TickerNews = append(sources.TickerNews, adapter(client, ttls.TickerNews))
		metadata = append(metadata, client)
	}

	if cfg := config.Clients.Finnhub; cfg.APIKey != "" {
		client := finnhub.NewClient(cfg.APIKey,
			finnhub.WithLogger(logger),
			finnhub.WithRateLimit(cfg.RateLimit),
		)
		sources.TickerNews = append(sources.TickerNews, adapter(client, ttls.TickerNews))
		metadata = append(metadata, client)
	}

	if len(sources.TickerNews) == 0 {
		logger.Warn().Msg("No ticker-news provider configured - company news relies on the aggregators")
	}

	return sources, metadata
}

// newTextGenerator creates the configured summary provider.
// It returns nil when the provider has no key, in which case summaries fall back to article text.
func newTextGenerator(ctx context.Context, config *common.Config, logger *common.Logger) interfaces.TextGenerator {
	provider := strings.ToLower(strings.TrimSpace(config.Summary.Provider))

	switch provider {
	case openai.ProviderName:
		cfg := config.Clients.OpenAI
		if cfg.APIKey == "" {
			break
		}
		return openai.NewClient(cfg.APIKey, openai.WithModel(cfg.Model), openai.WithLogger(logger))

	case anthropic.ProviderName:
		cfg := config.Clients.Anthropic
		if cfg.APIKey == "" {
			break
		}
		return anthropic.NewClient(cfg.APIKey, anthropic.WithModel(cfg.Model), anthropic.WithLogger(logger))

	case gemini.ProviderName, "":
		provider = gemini.ProviderName
		cfg := config.Clients.Gemini
		if cfg.APIKey == "" {
			break
		}
		client, err := gemini.NewClient(ctx, cfg.APIKey, gemini.WithModel(cfg.Model), gemini.WithLogger(logger))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			return nil
		}
		return client

	default:
		logger.Warn().Str("provider", provider).Msg("Unknown summary provider - summaries will use article text")
		return nil
	}

	logger.Warn().Str("provider", provider).Msg("Summary API key not configured - summaries will use article text")
	return nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, cancel warm cache, close the Redis backend.
func (a *App) Close() {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
		a.scheduler = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close Redis cache")
		}
		a.redis = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.NewsService, a.Logger)
	}()
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGeneralMarketNewsTool(), handleGeneralMarketNews(a.NewsService, logger))
	s.AddTool(createPortfolioNewsTool(), handlePortfolioNews(a.NewsService, logger))
	s.AddTool(createListCompaniesTool(), handleListCompanies(a.NewsService, logger))
}
