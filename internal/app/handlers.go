package app

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/newsdesk/internal/common"
	"github.com/bobmcallan/newsdesk/internal/interfaces"
	"github.com/bobmcallan/newsdesk/internal/models"
	"github.com/bobmcallan/newsdesk/internal/services/report"
)

// MaxLimit caps the article count a caller can request
const MaxLimit = 20

// ClampLimit applies the default and the upper bound to a requested article count
func ClampLimit(limit int) int {
	if limit <= 0 {
		return 0 // service default
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("newsdesk\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGeneralMarketNews implements the general_market_news tool
func handleGeneralMarketNews(newsService interfaces.NewsService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := ClampLimit(request.GetInt("limit", 0))

		feed := newsService.GeneralMarket(ctx, limit)
		logger.Debug().Int("articles", len(feed.Articles)).Bool("partial", feed.Partial).Msg("General market news served")

		return textResult(report.FormatFeed(feed)), nil
	}
}

// handlePortfolioNews implements the portfolio_news tool
func handlePortfolioNews(newsService interfaces.NewsService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		selection := request.GetString("selection", models.MostImportantHeadlines)
		limit := ClampLimit(request.GetInt("limit", 0))

		feed := newsService.PortfolioNews(ctx, selection, limit)
		logger.Debug().Str("selection", feed.Selection).Int("articles", len(feed.Articles)).Msg("Portfolio news served")

		return textResult(report.FormatFeed(feed)), nil
	}
}

// handleListCompanies implements the list_companies tool
func handleListCompanies(newsService interfaces.NewsService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		companies := newsService.Companies(ctx)
		if len(companies) == 0 {
			logger.Warn().Msg("List companies: watch list is empty or unavailable")
			return errorResult(report.EmptyCompanies), nil
		}
		return textResult(report.FormatCompanies(companies)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
