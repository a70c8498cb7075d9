package news

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/newsdesk/internal/cache"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
)

// errNoArticles keeps empty results out of the cache so the source is asked again next time
var errNoArticles = errors.New("no articles")

// Adapter fronts a provider with the result cache, a per-call timeout and optional pacing.
// Provider failures are logged and surface as an empty result.
type Adapter struct {
	provider interfaces.NewsProvider
	cache    *cache.Cache
	ttl      time.Duration
	timeout  time.Duration
	pacer    *rate.Limiter
	logger   *common.Logger
}

// NewAdapter wraps a provider
func NewAdapter(p interfaces.NewsProvider, c *cache.Cache, ttl, timeout time.Duration, logger *common.Logger) *Adapter {
	return &Adapter{
		provider: p,
		cache:    c,
		ttl:      ttl,
		timeout:  timeout,
		logger:   logger,
	}
}

// paced returns a copy whose uncached calls wait on l
func (a *Adapter) paced(l *rate.Limiter) *Adapter {
	cp := *a
	cp.pacer = l
	return &cp
}

// Name returns the wrapped provider name
func (a *Adapter) Name() string {
	return a.provider.Name()
}

// Fetch returns at most limit valid articles. It never fails.
func (a *Adapter) Fetch(ctx context.Context, query string, limit int) []models.Article {
	if limit <= 0 {
		return nil
	}

	key := cache.Key(a.provider.Name(), query, limit)
	articles, err := cache.GetOrFetch(ctx, a.cache, key, a.ttl, func(fctx context.Context) ([]models.Article, error) {
		tctx, cancel := context.WithTimeout(fctx, a.timeout)
		defer cancel()

		if a.pacer != nil {
			if err := a.pacer.Wait(tctx); err != nil {
				return nil, err
			}
		}

		got, err := a.provider.Fetch(tctx, query, limit)
		if err != nil {
			return nil, err
		}
		got = models.ValidArticles(got)
		if len(got) == 0 {
			return nil, errNoArticles
		}
		return got, nil
	})
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, errNoArticles) {
			a.logger.Warn().
				Str("source", a.provider.Name()).
				Str("query", query).
				Err(err).
				Msg("News source failed")
		}
		return nil
	}

	articles = models.ValidArticles(articles)
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}
