// Package openai provides a text generator backed by OpenAI chat completions
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
)

const (
	DefaultModel = "gpt-4o-mini"

	// ProviderName identifies OpenAI in cache keys and logs
	ProviderName = "openai"
)

// Client implements TextGenerator against OpenAI
type Client struct {
	client *openai.Client
	model  openai.ChatModel
	logger *common.Logger
}

type clientSettings struct {
	model   string
	baseURL string
	logger  *common.Logger
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

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(s *clientSettings) {
		s.logger = logger
	}
}

// NewClient creates an OpenAI text generator
func NewClient(apiKey string, opts ...ClientOption) *Client {
	settings := &clientSettings{
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(settings)
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if settings.baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(settings.baseURL))
	}

	client := openai.NewClient(requestOpts...)
	return &Client{
		client: &client,
		model:  openai.ChatModel(settings.model),
		logger: settings.logger,
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// GenerateContent sends prompt as a single user message
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", string(c.model)).Msg("Generating content")

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response from openai")
	}
	return text, nil
}

// Ensure Client implements TextGenerator
var _ interfaces.TextGenerator = (*Client)(nil)
