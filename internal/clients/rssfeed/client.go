// Package rssfeed provides a syndication feed news source backed by gofeed
package rssfeed

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
)

const (
	DefaultFeedURL = "https://finance.yahoo.com/news/rssindex"
	DefaultName    = "Yahoo Finance"
	DefaultTimeout = 10 * time.Second

	// ProviderName identifies the feed source in cache keys and logs
	ProviderName = "rss"
)

// Client reads a fixed feed URL. The query passed to Fetch is ignored.
type Client struct {
	feedURL string
	name    string
	parser  *gofeed.Parser
	logger  *common.Logger
	now     func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithFeedURL sets the feed URL
func WithFeedURL(feedURL string) ClientOption {
	return func(c *Client) {
		c.feedURL = feedURL
	}
}

// WithSourceName sets the source name stamped on each article
func WithSourceName(name string) ClientOption {
	return func(c *Client) {
		c.name = name
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.parser.Client = &http.Client{Timeout: timeout}
	}
}

// WithClock overrides the time stamped on undated entries
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a feed client
func NewClient(opts ...ClientOption) *Client {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: DefaultTimeout}

	c := &Client{
		feedURL: DefaultFeedURL,
		name:    DefaultName,
		parser:  parser,
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// Fetch returns the newest limit entries of the feed.
// Entries without a parseable publish date are stamped with the current time.
func (c *Client) Fetch(ctx context.Context, _ string, limit int) ([]models.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	feed, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching feed %s: %w", c.name, err)
	}

	now := c.now()
	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		a := models.Article{
			Title:       common.StripMarkup(item.Title),
			URL:         strings.TrimSpace(item.Link),
			Source:      c.name,
			PublishedAt: &pub,
			Description: common.StripMarkup(desc),
		}
		if !a.IsValid() {
			continue
		}
		articles = append(articles, a)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(*articles[j].PublishedAt)
	})
	if len(articles) > limit {
		articles = articles[:limit]
	}

	c.logger.Debug().Str("feed", c.name).Int("count", len(articles)).Msg("Feed parsed")
	return articles, nil
}

// Ensure Client implements NewsProvider
var _ interfaces.NewsProvider = (*Client)(nil)
