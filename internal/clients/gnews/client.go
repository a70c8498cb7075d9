// Package gnews provides a client for the GNews search API
package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
)

const (
	DefaultBaseURL   = "https://gnews.io/api/v4"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 2 // requests per second
	MaxPerRequest    = 100

	// ProviderName identifies GNews in cache keys and logs
	ProviderName = "gnews"
)

// Client implements NewsProvider against GNews
type Client struct {
	baseURL    string
	apiKey     string
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

// NewClient creates a new GNews client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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
	return fmt.Sprintf("GNews API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

type searchResponse struct {
	TotalArticles int             `json:"totalArticles"`
	Articles      []articleRecord `json:"articles"`
}

type articleRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// Fetch searches English-language articles matching query
func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]models.Article, error) {
	q := common.SanitizeQuery(query)
	if q == "" || limit <= 0 {
		return nil, nil
	}
	if limit > MaxPerRequest {
		limit = MaxPerRequest
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return nil, fmt.Errorf("GNews response missing articles list")
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, rec := range resp.Articles {
		a := models.Article{
			Title:       common.StripMarkup(rec.Title),
			URL:         strings.TrimSpace(rec.URL),
			Source:      strings.TrimSpace(rec.Source.Name),
			PublishedAt: parseTime(rec.PublishedAt),
			Description: common.StripMarkup(rec.Description),
		}
		if a.Source == "" {
			a.Source = "GNews"
		}
		if !a.IsValid() {
			continue
		}
		articles = append(articles, a)
		if len(articles) == limit {
			break
		}
	}

	c.logger.Debug().Str("query", q).Int("count", len(articles)).Msg("GNews search complete")
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

	c.logger.Debug().Str("url", c.baseURL+path).Msg("GNews API request")

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

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// Ensure Client implements NewsProvider
var _ interfaces.NewsProvider = (*Client)(nil)
