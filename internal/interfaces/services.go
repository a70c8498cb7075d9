// Package interfaces defines service contracts for newsdesk
package interfaces

import (
	"context"

	"github.com/bobmcallan/newsdesk/internal/models"
)

// NewsService aggregates, deduplicates and summarizes headlines
type NewsService interface {
	// GeneralMarket returns the top general market headlines
	GeneralMarket(ctx context.Context, limit int) *models.NewsFeed

	// PortfolioNews returns headlines for the whole portfolio or a single selected company
	PortfolioNews(ctx context.Context, selection string, limit int) *models.NewsFeed

	// Companies returns the portfolio companies with resolved names
	Companies(ctx context.Context) []models.Company
}

// TickerResolver maps ticker symbols to company names
type TickerResolver interface {
	// Resolve never fails; unresolved tickers fall back to a derived name
	Resolve(ctx context.Context, ticker string) string

	// Seed records a known name without any lookup
	Seed(ticker, name string)
}

// Summarizer produces short article synopses
type Summarizer interface {
	// Summarize returns a one or two sentence summary, or "" for an invalid title
	Summarize(ctx context.Context, title, description string) string
}
