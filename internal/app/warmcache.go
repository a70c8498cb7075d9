package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
)

// warmCache pre-fetches the general feed and the portfolio company list so the first query is fast.
func warmCache(ctx context.Context, newsService interfaces.NewsService, logger *common.Logger) {
	if os.Getenv("NEWSDESK_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via NEWSDESK_WARM_CACHE=off")
		return
	}

	start := time.Now()
	logger.Info().Msg("Warm cache: starting")

	feed := newsService.GeneralMarket(ctx, 0)
	companies := newsService.Companies(ctx)

	if ctx.Err() != nil {
		logger.Warn().Err(ctx.Err()).Msg("Warm cache: interrupted")
		return
	}

	logger.Info().
		Int("articles", len(feed.Articles)).
		Int("companies", len(companies)).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
