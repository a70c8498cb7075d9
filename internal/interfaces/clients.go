// Package interfaces defines service contracts for newsdesk
package interfaces

import (
	"context"

	"github.com/bobmcallan/newsdesk/internal/models"
)

// NewsProvider is one external news source.
// Fetch returns at most limit valid articles with markup already stripped.
// Providers keyed by ticker rather than free text treat query as the symbol.
type NewsProvider interface {
	// Name identifies the provider in cache keys and logs
	Name() string

	// Fetch retrieves articles for a query
	Fetch(ctx context.Context, query string, limit int) ([]models.Article, error)
}

// MetadataProvider looks up company names for a ticker
type MetadataProvider interface {
	Name() string

	// GetCompanyMetadata returns the name fields known for ticker
	GetCompanyMetadata(ctx context.Context, ticker string) (*models.CompanyMetadata, error)
}

// TextGenerator produces text from a prompt
type TextGenerator interface {
	// Name identifies the provider in logs
	Name() string

	// GenerateContent generates text content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
