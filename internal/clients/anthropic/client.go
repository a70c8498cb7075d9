// Package anthropic provides a text generator backed by the Anthropic Messages API
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
)

const (
	DefaultModel     = "claude-haiku-4-5"
	DefaultMaxTokens = 256

	// ProviderName identifies Anthropic in cache keys and logs
	ProviderName = "anthropic"
)

// Client implements TextGenerator against Anthropic
type Client struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *common.Logger
}

type clientSettings struct {
	model     string
	baseURL   string
	maxTokens int64
	logger    *common.Logger
}

// ClientOption configures the client
type ClientOption func(*clientSettings)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(s *clientSettings) {
		if model != "" {
			s.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(s *clientSettings) {
		s.baseURL = baseURL
	}
}

// WithMaxTokens caps the response length
func WithMaxTokens(n int64) ClientOption {
	return func(s *clientSettings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(s *clientSettings) {
		s.logger = logger
	}
}

// NewClient creates an Anthropic text generator
func NewClient(apiKey string, opts ...ClientOption) *Client {
	settings := &clientSettings{
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		logger:    common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(settings)
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if settings.baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(settings.baseURL))
	}

	client := anthropic.NewClient(requestOpts...)
	return &Client{
		client:    &client,
		model:     anthropic.Model(settings.model),
		maxTokens: settings.maxTokens,
		logger:    settings.logger,
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// GenerateContent sends prompt as a single user turn
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", string(c.model)).Msg("Generating content")

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no response from anthropic")
	}
	return text, nil
}

// Ensure Client implements TextGenerator
var _ interfaces.TextGenerator = (*Client)(nil)
