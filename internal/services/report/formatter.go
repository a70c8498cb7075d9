// Package report renders news feeds as markdown
package report

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/newsdesk/internal/models"
)

const (
	EmptyGeneral   = "No recent market news found."
	EmptyPortfolio = "No recent news found for this selection."
	EmptyCompanies = "No portfolio data found"

	partialNote = "_Some sources did not answer in time, results may be incomplete._"
)

var linkText = strings.NewReplacer("[", "\\[", "]", "\\]")

// FormatFeed renders a feed: one block per article followed by the last-updated footer
func FormatFeed(feed *models.NewsFeed) string {
	var sb strings.Builder

	switch feed.Kind {
	case models.FeedPortfolio:
		sb.WriteString(fmt.Sprintf("## Portfolio News: %s\n\n", feed.Selection))
	default:
		sb.WriteString("## General Market News\n\n")
	}

	if feed.Partial {
		sb.WriteString(partialNote)
		sb.WriteString("\n\n")
	}

	if feed.Empty() {
		if feed.Kind == models.FeedPortfolio {
			sb.WriteString(EmptyPortfolio)
		} else {
			sb.WriteString(EmptyGeneral)
		}
		sb.WriteString("\n\n")
	}

	for _, a := range feed.Articles {
		if !a.IsValid() {
			continue
		}
		formatArticle(&sb, a)
	}

	sb.WriteString(fmt.Sprintf("Last updated: %s\n", feed.GeneratedAt.Format("15:04:05")))
	return sb.String()
}

func formatArticle(sb *strings.Builder, a models.Article) {
	sb.WriteString(fmt.Sprintf("#### [%s](%s)", linkText.Replace(a.Title), a.Link()))
	if a.Company != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", a.Company))
	}
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("%s | %s\n\n", a.PublishedLabel(), a.SourceLabel()))

	if s := strings.TrimSpace(a.Summary); s != "" {
		sb.WriteString(fmt.Sprintf("*%s*\n\n", s))
	}
	sb.WriteString("---\n\n")
}

// FormatCompanies renders the company selector options, the sentinel first
func FormatCompanies(companies []models.Company) string {
	if len(companies) == 0 {
		return EmptyCompanies + "\n"
	}

	var sb strings.Builder
	sb.WriteString("## Portfolio Companies\n\n")
	sb.WriteString("| Option | Ticker |\n")
	sb.WriteString("|--------|--------|\n")
	sb.WriteString(fmt.Sprintf("| %s | |\n", models.MostImportantHeadlines))
	for _, c := range companies {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", c.Name, c.Ticker))
	}
	return sb.String()
}
