// Package eodhd provides a client for the EODHD API: ticker news and company metadata
package eodhd

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
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second

	// ProviderName identifies EODHD in cache keys and logs
	ProviderName = "eodhd"
)

// newsDateLayouts lists the date formats seen in EODHD news payloads
var newsDateLayouts = []string{
	"2006-01-02T15:04:05+00:00",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Client implements NewsProvider and MetadataProvider against EODHD
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

// NewClient creates a new EODHD client
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
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

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

type newsResponse struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link"`
	Source  string `json:"source"`
}

// Fetch retrieves news for a ticker symbol; query is the ticker
func (c *Client) Fetch(ctx context.Context, ticker string, limit int) ([]models.Article, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" || limit <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("s", ticker)
	params.Set("limit", strconv.Itoa(limit))

	var newsResp []newsResponse
	if err := c.get(ctx, "/news", params, &newsResp); err != nil {
		return nil, err
	}

	articles := make([]models.Article, 0, len(newsResp))
	for _, item := range newsResp {
		a := models.Article{
			Title:       common.StripMarkup(item.Title),
			URL:         strings.TrimSpace(item.Link),
			Source:      item.Source,
			PublishedAt: parseNewsDate(item.Date),
			Description: common.StripMarkup(item.Content),
		}
		if a.Source == "" {
			a.Source = "EODHD"
		}
		if !a.IsValid() {
			continue
		}
		articles = append(articles, a)
		if len(articles) == limit {
			break
		}
	}

	return articles, nil
}

func parseNewsDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range newsDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

type fundamentalsResponse struct {
	General struct {
		Code string `json:"Code"`
		Name string `json:"Name"`
		Type string `json:"Type"`
	} `json:"General"`
}

// GetCompanyMetadata looks up the company name from the fundamentals General block
func (c *Client) GetCompanyMetadata(ctx context.Context, ticker string) (*models.CompanyMetadata, error) {
	var resp fundamentalsResponse
	if err := c.get(ctx, "/fundamentals/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return nil, err
	}

	return &models.CompanyMetadata{
		Ticker:   ticker,
		LongName: strings.TrimSpace(resp.General.Name),
	}, nil
}

// Ensure Client implements the provider interfaces
var (
	_ interfaces.NewsProvider     = (*Client)(nil)
	_ interfaces.MetadataProvider = (*Client)(nil)
)
