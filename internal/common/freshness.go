// Package common provides shared utilities for newsdesk
package common

import "time"

// Freshness TTLs for cached source results
const (
	FreshnessFeed        = 24 * time.Hour // syndication feed, slow moving
	FreshnessAggregator  = 1 * time.Hour
	FreshnessPortfolio   = 30 * time.Minute // resolved company list
	FreshnessTickerNews  = 30 * time.Minute
	FreshnessSummary     = 24 * time.Hour
	FreshnessMetadata    = 24 * time.Hour // ticker metadata lookups
	FreshnessCompanyName = 0              // resolver table, never expires
)

// TTLs groups the per-source TTLs resolved from configuration
type TTLs struct {
	Feed       time.Duration
	Aggregator time.Duration
	Portfolio  time.Duration
	TickerNews time.Duration
	Summary    time.Duration
	Metadata   time.Duration
}

// DefaultTTLs returns the freshness defaults
func DefaultTTLs() TTLs {
	return TTLs{
		Feed:       FreshnessFeed,
		Aggregator: FreshnessAggregator,
		Portfolio:  FreshnessPortfolio,
		TickerNews: FreshnessTickerNews,
		Summary:    FreshnessSummary,
		Metadata:   FreshnessMetadata,
	}
}

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
