package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/newsdesk/internal/cache"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
)

// refreshTimeout bounds one scheduled refresh
const refreshTimeout = 2 * time.Minute

// cronLogger routes cron's own messages through the application logger
type cronLogger struct {
	logger *common.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("Scheduler: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("Scheduler: " + msg)
}

// StartScheduler runs the cache refresh on the configured cron schedule.
// An empty schedule disables it.
func (a *App) StartScheduler() error {
	spec := a.Config.News.WarmSchedule
	if spec == "" {
		a.Logger.Info().Msg("Scheduler: disabled, no warm_schedule configured")
		return nil
	}

	l := cronLogger{logger: a.Logger}
	c := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		refreshCache(ctx, a.NewsService, a.Cache, a.Logger)
	}); err != nil {
		return fmt.Errorf("invalid warm_schedule %q: %w", spec, err)
	}

	c.Start()
	a.scheduler = c
	a.Logger.Info().Str("schedule", spec).Msg("Scheduler: started")
	return nil
}

// refreshCache drops expired entries then re-warms the feeds
func refreshCache(ctx context.Context, newsService interfaces.NewsService, c *cache.Cache, logger *common.Logger) {
	removed := c.Sweep()
	logger.Debug().Int("removed", removed).Int("entries", c.Len()).Msg("Scheduler: cache swept")

	warmCache(ctx, newsService, logger)
}
