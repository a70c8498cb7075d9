package models

import "time"

// Feed kinds
const (
	FeedGeneral   = "general"
	FeedPortfolio = "portfolio"
)

// MostImportantHeadlines is the portfolio selection that fans out across every company
const MostImportantHeadlines = "Most important headlines"

// NewsFeed is the ordered result of one pipeline call
type NewsFeed struct {
	Kind        string    `json:"kind"`
	Selection   string    `json:"selection,omitempty"`
	Articles    []Article `json:"articles"`
	Partial     bool      `json:"partial"` // deadline expired before every source finished
	GeneratedAt time.Time `json:"generated_at"`
}

// Empty reports whether the feed carries no articles
func (f *NewsFeed) Empty() bool {
	return f == nil || len(f.Articles) == 0
}
