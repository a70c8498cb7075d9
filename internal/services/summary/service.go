// Package summary produces one or two sentence synopses of news articles
package summary

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/newsdesk/internal/cache"
	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
)

const (
	// FallbackWords is the length of the offline summary
	FallbackWords = 25

	DefaultTimeout = 8 * time.Second
)

var errEmptyGeneration = errors.New("generator returned no text")

// Service summarizes articles with a text generator, falling back to a truncated
// description when generation fails. Only successful generations are cached.
type Service struct {
	generator interfaces.TextGenerator
	cache     *cache.Cache
	ttl       time.Duration
	timeout   time.Duration
	logger    *common.Logger
}

// Option configures the summarizer
type Option func(*Service)

// WithTTL sets how long generated summaries are cached
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithTimeout sets the per-generation timeout
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewService creates a summarizer. A nil generator always yields the fallback.
func NewService(generator interfaces.TextGenerator, c *cache.Cache, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		cache:     c,
		ttl:       common.FreshnessSummary,
		timeout:   DefaultTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a summary ending in sentence punctuation, or "" for an invalid title
func (s *Service) Summarize(ctx context.Context, title, description string) string {
	title = common.StripMarkup(title)
	if common.IsPlaceholderTitle(title) {
		return ""
	}
	description = common.StripMarkup(description)

	if s.generator == nil {
		return Fallback(title, description)
	}

	mode := SelectMode(title, description)
	key := cache.SummaryKey(s.generator.Name(), title, description)

	text, err := cache.GetOrFetch(ctx, s.cache, key, s.ttl, func(fctx context.Context) (string, error) {
		tctx, cancel := context.WithTimeout(fctx, s.timeout)
		defer cancel()

		out, err := s.generator.GenerateContent(tctx, BuildPrompt(mode, title, description))
		if err != nil {
			return "", err
		}
		out = common.EnsureTerminalPunctuation(common.CollapseWhitespace(out))
		if out == "" {
			return "", errEmptyGeneration
		}
		return out, nil
	})
	if err != nil {
		s.logger.Warn().
			Str("provider", s.generator.Name()).
			Str("mode", mode.String()).
			Err(err).
			Msg("Summary generation failed, using fallback")
		return Fallback(title, description)
	}

	return text
}

// Fallback returns the first words of the description, or of the title when the
// description is empty, with terminal punctuation ensured
func Fallback(title, description string) string {
	source := common.CollapseWhitespace(description)
	if source == "" {
		source = common.CollapseWhitespace(title)
	}
	return common.EnsureTerminalPunctuation(common.TruncateWords(source, FallbackWords))
}

// Ensure Service implements Summarizer
var _ interfaces.Summarizer = (*Service)(nil)
