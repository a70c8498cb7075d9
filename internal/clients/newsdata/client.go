// Package newsdata provides a client for the NewsData.io news API
package newsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
)

const (
	DefaultBaseURL   = "https://newsdata.io/api/1"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second
	DefaultCategory  = "business"

	// ProviderName identifies NewsData.io in cache keys and logs
	ProviderName = "newsdata"

	pubDateLayout = "2006-01-02 15:04:05"
)

// Client implements NewsProvider against NewsData.io
type Client struct {
	baseURL    string
	apiKey     string
	category   string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithCategory restricts results to a NewsData category
func WithCategory(category string) ClientOption {
	return func(c *Client) {
		c.category = category
	}
}

// NewClient creates a new NewsData.io client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		category: DefaultCategory,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("NewsData API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

type newsResponse struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Results      json.RawMessage `json:"results"` // object on error, list on success
}

type resultRecord struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	SourceID    string `json:"source_id"`
}

type errorRecord struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Fetch retrieves business news matching query. The API has no count parameter,
// so the result is capped client-side.
func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]models.Article, error) {
	q := strings.TrimSpace(query)
	if q == "" || limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("language", "en")
	if c.category != "" {
		params.Set("category", c.category)
	}

	var resp newsResponse
	if err := c.get(ctx, "/news", params, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "success" {
		var e errorRecord
		_ = json.Unmarshal(resp.Results, &e)
		return nil, &APIError{StatusCode: http.StatusOK, Message: e.Message, Endpoint: "/news"}
	}

	var records []resultRecord
	if err := json.Unmarshal(resp.Results, &records); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	articles := make([]models.Article, 0, limit)
	for _, rec := range records {
		a := models.Article{
			Title:       common.StripMarkup(rec.Title),
			URL:         strings.TrimSpace(rec.Link),
			Source:      strings.TrimSpace(rec.SourceID),
			PublishedAt: parsePubDate(rec.PubDate),
			Description: common.StripMarkup(rec.Description),
		}
		if a.Source == "" {
			a.Source = "NewsData.io"
		}
		if !a.IsValid() {
			continue
		}
		articles = append(articles, a)
		if len(articles) == limit {
			break
		}
	}

	c.logger.Debug().Str("query", q).Int("count", len(articles)).Msg("NewsData search complete")
	return articles, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("apikey", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("NewsData API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func parsePubDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{pubDateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Ensure Client implements NewsProvider
var _ interfaces.NewsProvider = (*Client)(nil)
