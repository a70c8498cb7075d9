// Package models defines data structures for newsdesk
package models

import (
	"strings"
	"time"
)

// Article is a normalized news item produced by a source adapter.
// Stages enrich articles through the value-returning With* methods.
type Article struct {
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Description string     `json:"description,omitempty"`
	Company     string     `json:"company,omitempty"` // portfolio pipeline only
	Summary     string     `json:"summary,omitempty"`
}

// PublishedLayout is the render format for publish dates
const PublishedLayout = "Jan 02, 2006"

// IsValid reports whether the article has a usable headline
func (a Article) IsValid() bool {
	t := strings.TrimSpace(a.Title)
	return t != "" && !strings.EqualFold(t, "no title")
}

// Link returns the article URL, or "#" when the provider gave none
func (a Article) Link() string {
	if a.URL == "" {
		return "#"
	}
	return a.URL
}

// SourceLabel returns the source name or "Unknown Source"
func (a Article) SourceLabel() string {
	if a.Source == "" {
		return "Unknown Source"
	}
	return a.Source
}

// PublishedLabel formats the publish date, or "Unknown date" when absent
func (a Article) PublishedLabel() string {
	if a.PublishedAt == nil || a.PublishedAt.IsZero() {
		return "Unknown date"
	}
	return a.PublishedAt.Format(PublishedLayout)
}

// WithCompany returns a copy tagged with the given company name
func (a Article) WithCompany(company string) Article {
	a.Company = company
	return a
}

// WithSummary returns a copy carrying the given summary
func (a Article) WithSummary(summary string) Article {
	a.Summary = summary
	return a
}

// ValidArticles returns the articles with usable headlines, in order
func ValidArticles(articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if a.IsValid() {
			out = append(out, a)
		}
	}
	return out
}
