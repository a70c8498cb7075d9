// Package news aggregates headlines from the configured sources into summarized feeds
package news

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/newsdesk/internal/cache"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
	"github.com/bobmcallan/newsdesk/internal/services/dedupe"
	"github.com/bobmcallan/newsdesk/internal/services/summary"
)

// Settings holds the pipeline parameters
type Settings struct {
	GeneralQuery         string
	GeneralFetchLimit    int
	DefaultLimit         int
	PerCompanyLimit      int
	CompanyLimit         int
	PortfolioConcurrency int
	SummaryConcurrency   int
	PortfolioSpacing     time.Duration
	Deadline             time.Duration
	PortfolioTTL         time.Duration
}

// DefaultSettings returns the settings of a default configuration
func DefaultSettings() Settings {
	return SettingsFromConfig(common.NewDefaultConfig())
}

// SettingsFromConfig extracts the pipeline settings from the loaded configuration
func SettingsFromConfig(cfg *common.Config) Settings {
	return Settings{
		GeneralQuery:         cfg.News.GeneralQuery,
		GeneralFetchLimit:    cfg.News.GeneralFetchLimit,
		DefaultLimit:         cfg.News.DefaultLimit,
		PerCompanyLimit:      cfg.News.PerCompanyLimit,
		CompanyLimit:         cfg.News.CompanyLimit,
		PortfolioConcurrency: cfg.News.PortfolioConcurrency,
		SummaryConcurrency:   cfg.News.SummaryConcurrency,
		PortfolioSpacing:     cfg.News.GetPortfolioSpacing(),
		Deadline:             cfg.News.GetDeadline(),
		PortfolioTTL:         cfg.Cache.TTL.TTLs().Portfolio,
	}
}

func (s *Settings) applyDefaults() {
	d := Settings{
		GeneralQuery:         "stock market OR economy OR investing",
		GeneralFetchLimit:    7,
		DefaultLimit:         5,
		PerCompanyLimit:      1,
		CompanyLimit:         3,
		PortfolioConcurrency: 4,
		SummaryConcurrency:   4,
		PortfolioSpacing:     300 * time.Millisecond,
		Deadline:             20 * time.Second,
		PortfolioTTL:         common.FreshnessPortfolio,
	}
	if s.GeneralQuery == "" {
		s.GeneralQuery = d.GeneralQuery
	}
	if s.GeneralFetchLimit <= 0 {
		s.GeneralFetchLimit = d.GeneralFetchLimit
	}
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = d.DefaultLimit
	}
	if s.PerCompanyLimit <= 0 {
		s.PerCompanyLimit = d.PerCompanyLimit
	}
	if s.CompanyLimit <= 0 {
		s.CompanyLimit = d.CompanyLimit
	}
	if s.PortfolioConcurrency <= 0 {
		s.PortfolioConcurrency = d.PortfolioConcurrency
	}
	if s.SummaryConcurrency <= 0 {
		s.SummaryConcurrency = d.SummaryConcurrency
	}
	if s.PortfolioSpacing <= 0 {
		s.PortfolioSpacing = d.PortfolioSpacing
	}
	if s.Deadline <= 0 {
		s.Deadline = d.Deadline
	}
	if s.PortfolioTTL <= 0 {
		s.PortfolioTTL = d.PortfolioTTL
	}
}

// Sources groups adapters by role. Each slice is in priority order.
type Sources struct {
	General    []*Adapter // free-text market news
	Company    []*Adapter // queried with the company name
	TickerNews []*Adapter // queried with the ticker symbol
}

// Service implements NewsService
type Service struct {
	sources    Sources
	resolver   interfaces.TickerResolver
	summarizer interfaces.Summarizer
	watchlist  interfaces.WatchlistStore
	cache      *cache.Cache
	settings   Settings
	logger     *common.Logger
	now        func() time.Time
}

// NewService creates the aggregation service
func NewService(
	sources Sources,
	resolver interfaces.TickerResolver,
	summarizer interfaces.Summarizer,
	watchlist interfaces.WatchlistStore,
	c *cache.Cache,
	settings Settings,
	logger *common.Logger,
) *Service {
	settings.applyDefaults()
	pacer := NewPacer(settings.PortfolioSpacing)

	// per-company calls share one pacer; the general chain is not paced
	paced := Sources{General: sources.General}
	for _, a := range sources.Company {
		paced.Company = append(paced.Company, a.paced(pacer))
	}
	for _, a := range sources.TickerNews {
		paced.TickerNews = append(paced.TickerNews, a.paced(pacer))
	}

	return &Service{
		sources:    paced,
		resolver:   resolver,
		summarizer: summarizer,
		watchlist:  watchlist,
		cache:      c,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
}

// NewPacer returns a token bucket releasing one call per spacing interval
func NewPacer(spacing time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(spacing), 1)
}

// GeneralMarket returns the top general market headlines.
// The first source in priority order to return articles wins.
func (s *Service) GeneralMarket(ctx context.Context, limit int) *models.NewsFeed {
	if limit <= 0 {
		limit = s.settings.DefaultLimit
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.settings.Deadline)
	defer cancel()

	steps := make([]step, 0, len(s.sources.General))
	for _, a := range s.sources.General {
		steps = append(steps, step{adapter: a, query: s.settings.GeneralQuery})
	}

	raw := s.firstNonEmpty(ctx, steps, s.settings.GeneralFetchLimit)
	articles := prepare(raw, limit)
	articles = s.summarize(ctx, articles)

	feed := &models.NewsFeed{
		Kind:        models.FeedGeneral,
		Articles:    articles,
		Partial:     ctx.Err() != nil,
		GeneratedAt: s.now(),
	}

	s.logger.Info().
		Int("fetched", len(raw)).
		Int("articles", len(feed.Articles)).
		Bool("partial", feed.Partial).
		Dur("elapsed", time.Since(start)).
		Msg("General market feed built")

	return feed
}

type step struct {
	adapter *Adapter
	query   string
}

// firstNonEmpty runs steps in order and returns the first non-empty result.
// Later steps are not invoked once one succeeds.
func (s *Service) firstNonEmpty(ctx context.Context, steps []step, limit int) []models.Article {
	for _, st := range steps {
		if ctx.Err() != nil {
			return nil
		}
		if st.query == "" {
			continue
		}
		if got := st.adapter.Fetch(ctx, st.query, limit); len(got) > 0 {
			s.logger.Debug().Str("source", st.adapter.Name()).Str("query", st.query).Int("count", len(got)).Msg("Source selected")
			return got
		}
	}
	return nil
}

// prepare filters invalid titles, removes near duplicates and keeps the first limit articles
func prepare(articles []models.Article, limit int) []models.Article {
	out := dedupe.Dedupe(models.ValidArticles(articles))
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// summarize fills in summaries concurrently, preserving order.
// Once ctx is done the remaining articles get the offline summary.
func (s *Service) summarize(ctx context.Context, articles []models.Article) []models.Article {
	out := make([]models.Article, len(articles))

	var g errgroup.Group
	g.SetLimit(s.settings.SummaryConcurrency)
	for i, a := range articles {
		g.Go(func() error {
			var text string
			if ctx.Err() != nil || s.summarizer == nil {
				text = summary.Fallback(a.Title, a.Description)
			} else {
				text = s.summarizer.Summarize(ctx, a.Title, a.Description)
			}
			out[i] = a.WithSummary(text)
			return nil
		})
	}
	_ = g.Wait()

	return models.ValidArticles(out)
}

// Ensure Service implements NewsService
var _ interfaces.NewsService = (*Service)(nil)
