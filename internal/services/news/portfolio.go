package news

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/newsdesk/internal/cache"
	"github.com/bobmcallan/newsdesk/internal/models"
)

const companiesCacheKey = "portfolio|companies"

// PortfolioNews returns headlines for the portfolio. The "Most important headlines"
// selection fans out across every company, any other selection names one company.
func (s *Service) PortfolioNews(ctx context.Context, selection string, limit int) *models.NewsFeed {
	if limit <= 0 {
		limit = s.settings.DefaultLimit
	}
	selection = strings.TrimSpace(selection)
	if selection == "" {
		selection = models.MostImportantHeadlines
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.settings.Deadline)
	defer cancel()

	var raw []models.Article
	if strings.EqualFold(selection, models.MostImportantHeadlines) {
		raw = s.headlines(ctx, s.Companies(ctx), limit)
	} else {
		company := s.matchCompany(ctx, selection)
		for _, a := range s.companyNews(ctx, company, s.settings.CompanyLimit) {
			raw = append(raw, a.WithCompany(company.Name))
		}
	}

	articles := prepare(raw, limit)
	articles = s.summarize(ctx, articles)

	feed := &models.NewsFeed{
		Kind:        models.FeedPortfolio,
		Selection:   selection,
		Articles:    articles,
		Partial:     ctx.Err() != nil,
		GeneratedAt: s.now(),
	}

	s.logger.Info().
		Str("selection", selection).
		Int("fetched", len(raw)).
		Int("articles", len(feed.Articles)).
		Bool("partial", feed.Partial).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio feed built")

	return feed
}

// headlines fetches news per company concurrently and stops scheduling once the companies
// finished so far, taken in portfolio order, have produced target articles.
// Results are assembled in portfolio order.
func (s *Service) headlines(ctx context.Context, companies []models.Company, target int) []models.Article {
	if len(companies) == 0 {
		return nil
	}

	results := make([][]models.Article, len(companies))
	done := make([]bool, len(companies))
	var mu sync.Mutex

	fanCtx, stop := context.WithCancel(ctx)
	defer stop()

	var g errgroup.Group
	g.SetLimit(s.settings.PortfolioConcurrency)
	for i, company := range companies {
		if fanCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if fanCtx.Err() != nil {
				return nil
			}

			got := s.companyNews(fanCtx, company, s.settings.PerCompanyLimit)
			tagged := make([]models.Article, 0, len(got))
			for _, a := range got {
				tagged = append(tagged, a.WithCompany(company.Name))
			}

			mu.Lock()
			defer mu.Unlock()
			results[i] = tagged
			done[i] = true
			if prefixCount(results, done) >= target {
				stop()
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []models.Article
	for i := range companies {
		if done[i] {
			out = append(out, results[i]...)
		}
	}
	return out
}

// prefixCount counts articles from the leading run of finished companies
func prefixCount(results [][]models.Article, done []bool) int {
	n := 0
	for i := range results {
		if !done[i] {
			break
		}
		n += len(results[i])
	}
	return n
}

// companyNews runs the per-company chain: aggregators by name, then ticker-news by symbol
func (s *Service) companyNews(ctx context.Context, company models.Company, limit int) []models.Article {
	steps := make([]step, 0, len(s.sources.Company)+len(s.sources.TickerNews))
	for _, a := range s.sources.Company {
		steps = append(steps, step{adapter: a, query: company.Name})
	}
	for _, a := range s.sources.TickerNews {
		steps = append(steps, step{adapter: a, query: company.Ticker})
	}
	return s.firstNonEmpty(ctx, steps, limit)
}

// matchCompany finds the portfolio company by name or ticker. Unknown selections are
// treated as a company name whose ticker is the selection itself.
func (s *Service) matchCompany(ctx context.Context, selection string) models.Company {
	for _, c := range s.Companies(ctx) {
		if strings.EqualFold(c.Name, selection) || strings.EqualFold(c.Ticker, selection) {
			return c
		}
	}
	return models.Company{Ticker: selection, Name: selection}
}

// Companies returns the watch-list companies with resolved names, in portfolio order
func (s *Service) Companies(ctx context.Context) []models.Company {
	if s.watchlist == nil {
		return nil
	}

	companies, err := cache.GetOrFetch(ctx, s.cache, companiesCacheKey, s.settings.PortfolioTTL, s.loadCompanies)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Portfolio company list unavailable")
		return nil
	}
	return companies
}

func (s *Service) loadCompanies(ctx context.Context) ([]models.Company, error) {
	items, err := s.watchlist.Items(ctx)
	if err != nil {
		return nil, err
	}

	companies := make([]models.Company, len(items))
	var g errgroup.Group
	g.SetLimit(s.settings.PortfolioConcurrency)
	for i, item := range items {
		ticker := strings.TrimSpace(item.Ticker)
		if item.Name != "" {
			s.resolver.Seed(ticker, item.Name)
		}
		g.Go(func() error {
			companies[i] = models.Company{Ticker: ticker, Name: s.resolver.Resolve(ctx, ticker)}
			return nil
		})
	}
	_ = g.Wait()

	out := companies[:0]
	for _, c := range companies {
		if c.Ticker != "" && c.Name != "" {
			out = append(out, c)
		}
	}

	s.logger.Debug().Int("companies", len(out)).Msg("Portfolio companies resolved")
	return out, nil
}
