// Package finnhub provides ticker news and company profiles from Finnhub
package finnhub

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
)

const (
	DefaultRateLimit = 1 // requests per second, free tier allows 60/min
	DefaultLookback  = 7 * 24 * time.Hour
	DefaultTimeout   = 10 * time.Second

	// ProviderName identifies Finnhub in cache keys and logs
	ProviderName = "finnhub"

	dateLayout = "2006-01-02"
)

// Client wraps the Finnhub SDK
type Client struct {
	api      *finnhub.DefaultApiService
	logger   *common.Logger
	limiter  *rate.Limiter
	lookback time.Duration
	now      func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client, *finnhub.Configuration)

// WithBaseURL points the SDK at a different server
func WithBaseURL(baseURL string) ClientOption {
	return func(_ *Client, cfg *finnhub.Configuration) {
		cfg.Servers = finnhub.ServerConfigurations{{URL: strings.TrimRight(baseURL, "/")}}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client, _ *finnhub.Configuration) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client, _ *finnhub.Configuration) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLookback sets how far back company news is requested
func WithLookback(d time.Duration) ClientOption {
	return func(c *Client, _ *finnhub.Configuration) {
		c.lookback = d
	}
}

// WithClock overrides the time source for the news window
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client, _ *finnhub.Configuration) {
		c.now = now
	}
}

// NewClient creates a Finnhub client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}

	c := &Client{
		logger:   common.NewSilentLogger(),
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		lookback: DefaultLookback,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c, cfg)
	}

	c.api = finnhub.NewAPIClient(cfg).DefaultApi
	return c
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// Fetch returns recent company news for a ticker; query is the ticker
func (c *Client) Fetch(ctx context.Context, ticker string, limit int) ([]models.Article, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" || limit <= 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	to := c.now()
	from := to.Add(-c.lookback)

	res, _, err := c.api.CompanyNews(ctx).
		Symbol(ticker).
		From(from.Format(dateLayout)).
		To(to.Format(dateLayout)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news %s: %w", ticker, err)
	}

	articles := make([]models.Article, 0, limit)
	for _, news := range res {
		var a models.Article

		if news.Headline != nil {
			a.Title = common.StripMarkup(*news.Headline)
		}
		if news.Summary != nil {
			a.Description = common.StripMarkup(*news.Summary)
		}
		if news.Url != nil {
			a.URL = strings.TrimSpace(*news.Url)
		}
		if news.Source != nil {
			a.Source = *news.Source
		}
		if a.Source == "" {
			a.Source = "Finnhub"
		}
		if news.Datetime != nil && *news.Datetime > 0 {
			t := time.Unix(*news.Datetime, 0).UTC()
			a.PublishedAt = &t
		}

		if !a.IsValid() {
			continue
		}
		articles = append(articles, a)
		if len(articles) == limit {
			break
		}
	}

	c.logger.Debug().Str("ticker", ticker).Int("count", len(articles)).Msg("Finnhub company news")
	return articles, nil
}

// GetCompanyMetadata returns the profile name for a ticker
func (c *Client) GetCompanyMetadata(ctx context.Context, ticker string) (*models.CompanyMetadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	profile, _, err := c.api.CompanyProfile2(ctx).Symbol(ticker).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub profile %s: %w", ticker, err)
	}

	meta := &models.CompanyMetadata{Ticker: ticker}
	if profile.Name != nil {
		meta.LongName = strings.TrimSpace(*profile.Name)
	}
	return meta, nil
}

// Ensure Client implements the provider interfaces
var (
	_ interfaces.NewsProvider     = (*Client)(nil)
	_ interfaces.MetadataProvider = (*Client)(nil)
)
