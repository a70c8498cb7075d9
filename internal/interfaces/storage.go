// Package interfaces defines service contracts for newsdesk
package interfaces

import (
	"context"

	"github.com/bobmcallan/newsdesk/internal/models"
)

// WatchlistStore provides read-only access to the portfolio watch list
type WatchlistStore interface {
	// Items returns the watch-list entries in portfolio order
	Items(ctx context.Context) ([]models.WatchlistItem, error)
}
